package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

type registrationService struct {
	dm       contract.DataManager
	provider contract.TimetableProvider
	resolver contract.SchoolResolver
	validate *validator.Validate
	log      *zap.Logger
}

func newRegistration(dm contract.DataManager, provider contract.TimetableProvider, resolver contract.SchoolResolver, log *zap.Logger) *registrationService {
	return &registrationService{
		dm:       dm,
		provider: provider,
		resolver: resolver,
		validate: validator.New(),
		log:      log,
	}
}

// Register validates the credentials against untis and stores a new user.
// Errors are one of domain.ErrAlreadyRegistered, domain.ErrNoSchoolFound,
// domain.ErrBadCredentials, domain.ErrInvalidCredential, domain.ErrInvalidQR,
// or a store/resolver failure.
func (s *registrationService) Register(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	if err := s.validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	user := &entity.User{
		ID:          uuid.NewString(),
		SlackUserID: reg.SlackUserID,
	}

	var qr *entity.QRCredential
	if reg.QRData != "" {
		var err error
		qr, err = entity.ParseQRCredential(reg.QRData)
		if err != nil {
			return nil, err
		}
		user.Credential = qr
		user.SchoolName = qr.School
		user.Server = qr.Server
	} else {
		user.Credential = &entity.PasswordCredential{User: reg.Username, Password: reg.Password}
	}

	existing, err := s.dm.User().GetByUsername(ctx, user.Username())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, user.Username())
	}

	// the qr code already names school and server
	if qr == nil {
		school, err := s.resolver.ResolveSchool(ctx, reg.SchoolName)
		if err != nil {
			return nil, err
		}
		user.SchoolName = school.LoginName
		user.Server = school.Server
	}

	if !s.provider.CheckCredentials(ctx, user) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadCredentials, user.Username())
	}

	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		existing, err := tx.User().GetByUsername(ctx, user.Username())
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, user.Username())
		}
		return tx.User().Create(ctx, user)
	})
	if errors.Is(err, domain.ErrDuplicateUser) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, user.Username())
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("credential", string(user.Credential.Kind())),
		zap.String("school", user.SchoolName),
	)

	return user, nil
}
