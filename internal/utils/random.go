package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

var commonFirstNames = []string{
	"Ana", "Maria", "João", "José", "Francisca", "Antônio", "Carlos", "Paulo",
	"Lucas", "Juliana", "Fernanda", "Marcos", "Patrícia", "Rafael", "Aline",
	"Bruno", "Camila", "Gabriel", "Larissa", "Mateus",
}

var commonSurnames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves",
	"Pereira", "Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho",
	"Almeida", "Lopes", "Soares", "Fernandes", "Vieira", "Barbosa",
}

func GenerateRandomName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	last := commonSurnames[rand.Intn(len(commonSurnames))]
	return first + " " + last
}

var workerRoles = []domain.Role{
	domain.RoleCaregiver,
	domain.RoleCaregiver,
	domain.RoleCaregiver,
	domain.RoleNursingTechnician,
	domain.RoleNursingAssistant,
	domain.RoleNurse,
}

// GenerateRandomRole is weighted towards caregivers, like a real roster.
func GenerateRandomRole() domain.Role {
	return workerRoles[rand.Intn(len(workerRoles))]
}

var digits = "0123456789"

var replacer = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "é", "e", "ê", "e", "í", "i",
	"ó", "o", "ô", "o", "õ", "o", "ú", "u", "ç", "c",
)

func GenerateEmailFromName(fullName, emailDomainName string) string {
	local := replacer.Replace(strings.ToLower(fullName))
	local = strings.ReplaceAll(local, " ", ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

func GenerateRandomWorker(installationID uuid.UUID, emailDomainName string) *domain.Worker {
	fullName := GenerateRandomName()

	return &domain.Worker{
		ID:             uuid.New(),
		InstallationID: installationID,
		FullName:       fullName,
		Email:          GenerateEmailFromName(fullName, emailDomainName),
		Role:           GenerateRandomRole(),
		IsActive:       true,
	}
}

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(len(letters))]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

var teamColors = []string{"#2E86AB", "#A23B72", "#F18F01", "#C73E1D", "#3B1F2B", "#44AF69"}

func GenerateRandomTeam(installationID, createdBy uuid.UUID) *domain.Team {
	return &domain.Team{
		ID:             uuid.New(),
		InstallationID: installationID,
		Name:           "Equipe " + GenerateRandomID(2, 2),
		Color:          teamColors[rand.Intn(len(teamColors))],
		Description:    fmt.Sprintf("Equipe gerada %s", GenerateRandomID(4, 4)),
		IsActive:       true,
		CreatedBy:      createdBy,
	}
}
