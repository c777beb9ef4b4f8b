package handler

import (
	"net/http"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(r *http.Request, name string) (domain.Date, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, domain.BadRequest("%s: %s", name, err.Error())
	}
	return d, nil
}

func requiredDateQuery(r *http.Request, name string) (domain.Date, error) {
	d, err := dateQuery(r, name)
	if err != nil {
		return d, err
	}
	if d.IsZero() {
		return d, domain.BadRequest("%s is required", name)
	}
	return d, nil
}

// uuidQuery reads an optional id query parameter.
func uuidQuery(r *http.Request, name string) (*uuid.UUID, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, domain.BadRequest("invalid %s", name)
	}
	return &id, nil
}
