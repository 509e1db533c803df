package profile

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

// Patch merges into the stored profile; nil fields are left as they are.
type Patch struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Email        *string `json:"email"`
	BusinessName *string `json:"businessName"`
	Address      *string `json:"address"`
}

type Store struct {
	mu   sync.Mutex
	kv   storage.Store
	log  *zap.Logger
	info models.UserInfo
}

func NewStore(kv storage.Store, businessName string, log *zap.Logger) *Store {
	if strings.TrimSpace(businessName) == "" {
		businessName = models.DefaultBusinessName
	}
	return &Store{kv: kv, log: log, info: models.UserInfo{BusinessName: businessName}}
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var info models.UserInfo
	found, err := storage.GetJSON(ctx, s.kv, storage.KeyUserInfo, &info)
	if err != nil {
		return err
	}
	if found {
		s.info = info
	}
	return nil
}

func (s *Store) Get() models.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Store) Update(ctx context.Context, p Patch) (models.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.info
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"firstName", p.FirstName, &next.FirstName},
		{"lastName", p.LastName, &next.LastName},
		{"email", p.Email, &next.Email},
		{"businessName", p.BusinessName, &next.BusinessName},
		{"address", p.Address, &next.Address},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return models.UserInfo{}, models.Invalid(f.name, "please fill all fields")
		}
		*f.dst = v
	}
	if p.Email != nil {
		if _, err := mail.ParseAddress(next.Email); err != nil {
			return models.UserInfo{}, models.Invalid("email", "please enter a valid email address")
		}
	}

	if err := storage.PutJSON(ctx, s.kv, storage.KeyUserInfo, next); err != nil {
		return models.UserInfo{}, fmt.Errorf("save user info: %w", err)
	}
	s.info = next
	s.log.Info("profile updated", zap.String("business_name", next.BusinessName))
	return next, nil
}
