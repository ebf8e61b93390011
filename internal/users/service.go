package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("missing fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

// ValidationError reports a rejected profile field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

const (
	maxBioLength = 500
	passwordCost = bcrypt.DefaultCost
)

var (
	experienceLevels = []string{"beginner", "intermediate", "advanced", "expert"}
	riskLevels       = []string{"conservative", "moderate", "aggressive"}
	visibilities     = []string{"private", "public"}
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	now  func() time.Time
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// UpsertOAuth creates the user on first sign-in or refreshes the identity fields.
func (s *Service) UpsertOAuth(ctx context.Context, id Identity) (*models.User, error) {
	id.Email = strings.TrimSpace(strings.ToLower(id.Email))
	if id.Email == "" {
		return nil, ErrMissingFields
	}
	u, err := s.repo.UpsertByEmail(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// Register creates a local account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &models.User{
		Name:         username,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Provider:     models.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks a local email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies the editable subset of patch. Unknown keys are ignored.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch map[string]interface{}) (*models.User, error) {
	set, err := profileUpdates(patch)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = s.now()
	u, err := s.repo.UpdateFields(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// clearable fields accept null, which removes the stored value.
var clearable = map[string]bool{
	"date_of_birth":         true,
	"investment_experience": true,
	"risk_tolerance":        true,
	"profile_visibility":    true,
	"email_notifications":   true,
}

func profileUpdates(patch map[string]interface{}) (map[string]interface{}, error) {
	set := map[string]interface{}{}
	for key, raw := range patch {
		if raw == nil && clearable[key] {
			set[key] = nil
			continue
		}
		switch key {
		case "bio":
			v, err := str(key, raw)
			if err != nil {
				return nil, err
			}
			if utf8.RuneCountInString(v) > maxBioLength {
				return nil, &ValidationError{key, fmt.Sprintf("must be at most %d characters", maxBioLength)}
			}
			set[key] = v
		case "phone", "location", "company", "job_title":
			v, err := str(key, raw)
			if err != nil {
				return nil, err
			}
			set[key] = strings.TrimSpace(v)
		case "website":
			v, err := str(key, raw)
			if err != nil {
				return nil, err
			}
			v = strings.TrimSpace(v)
			if v != "" && !validURL(v) {
				return nil, &ValidationError{key, "must be a valid URL"}
			}
			set[key] = v
		case "investment_experience":
			if err := oneOf(key, raw, experienceLevels, set); err != nil {
				return nil, err
			}
		case "risk_tolerance":
			if err := oneOf(key, raw, riskLevels, set); err != nil {
				return nil, err
			}
		case "profile_visibility":
			if err := oneOf(key, raw, visibilities, set); err != nil {
				return nil, err
			}
		case "date_of_birth":
			v, err := str(key, raw)
			if err != nil {
				return nil, err
			}
			t, err := parseDate(v)
			if err != nil {
				return nil, &ValidationError{key, "must be a date (YYYY-MM-DD)"}
			}
			set[key] = t
		case "interested_sectors":
			list, err := strList(key, raw)
			if err != nil {
				return nil, err
			}
			set[key] = list
		case "email_notifications":
			b, ok := raw.(bool)
			if !ok {
				return nil, &ValidationError{key, "must be a boolean"}
			}
			set[key] = b
		}
	}
	return set, nil
}

func str(key string, raw interface{}) (string, error) {
	if raw == nil {
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", &ValidationError{key, "must be a string"}
	}
	return v, nil
}

func oneOf(key string, raw interface{}, allowed []string, set map[string]interface{}) error {
	v, err := str(key, raw)
	if err != nil {
		return err
	}
	for _, a := range allowed {
		if v == a {
			set[key] = v
			return nil
		}
	}
	return &ValidationError{key, "must be one of " + strings.Join(allowed, ", ")}
}

func strList(key string, raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ValidationError{key, "must be a list of strings"}
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, &ValidationError{key, "must be a list of strings"}
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func validURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
