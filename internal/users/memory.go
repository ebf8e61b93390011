package users

import (
	"context"
	"sync"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in process; used without MongoDB and in tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryUserRepository) byEmail(email string) *models.User {
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *MemoryUserRepository) UpsertByEmail(_ context.Context, id Identity, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(id.Email)
	if u == nil {
		u = &models.User{
			ID:        primitive.NewObjectID(),
			Email:     id.Email,
			Provider:  id.Provider,
			Age:       models.DefaultAge,
			CreatedAt: now,
		}
		m.users[u.ID] = u
	}
	u.Name = id.Name
	u.GivenName = id.GivenName
	u.FamilyName = id.FamilyName
	u.Picture = id.Picture
	if id.Locale != "" {
		u.Locale = id.Locale
	}
	if id.Username != "" {
		u.Username = id.Username
	}
	login := now
	u.LastLogin = &login
	u.UpdatedAt = now
	cp := *u
	return &cp, nil
}

func (m *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byEmail(u.Email) != nil {
		return ErrUserExists
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[oid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u := m.byEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryUserRepository) UpdateFields(_ context.Context, id string, set map[string]interface{}) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[oid]
	if !ok {
		return nil, nil
	}
	for k, v := range set {
		applyField(&u.Profile, k, v)
	}
	if t, ok := set["updated_at"].(time.Time); ok {
		u.UpdatedAt = t
	}
	cp := *u
	return &cp, nil
}

func applyField(p *models.Profile, key string, v interface{}) {
	switch key {
	case "bio":
		p.Bio, _ = v.(string)
	case "date_of_birth":
		if t, ok := v.(time.Time); ok {
			p.DateOfBirth = &t
		} else {
			p.DateOfBirth = nil
		}
	case "phone":
		p.Phone, _ = v.(string)
	case "location":
		p.Location, _ = v.(string)
	case "website":
		p.Website, _ = v.(string)
	case "company":
		p.Company, _ = v.(string)
	case "job_title":
		p.JobTitle, _ = v.(string)
	case "investment_experience":
		p.InvestmentExperience, _ = v.(string)
	case "risk_tolerance":
		p.RiskTolerance, _ = v.(string)
	case "interested_sectors":
		p.InterestedSectors, _ = v.([]string)
	case "profile_visibility":
		p.ProfileVisibility, _ = v.(string)
	case "email_notifications":
		if b, ok := v.(bool); ok {
			p.EmailNotifications = &b
		} else {
			p.EmailNotifications = nil
		}
	}
}
