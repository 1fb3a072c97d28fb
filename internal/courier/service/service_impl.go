package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/clock"
	"github.com/fleetops/couriertrack/internal/courier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("courier.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCourierRequest) (domain.Courier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Courier{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Courier{}, domain.ErrInvalidEmail
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if phone != "" && !phonePattern.MatchString(phone) {
		return domain.Courier{}, domain.ErrInvalidPhone
	}

	now := s.clock.Now()
	courier := domain.Courier{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &courier); err != nil {
		return domain.Courier{}, err
	}

	s.log.Info("courier created", zap.String("courier_id", courier.ID.String()))
	return courier, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCourierRequest) (domain.Courier, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Courier{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Courier{}, err
	}
	if item == nil {
		return domain.Courier{}, domain.ErrNotFound
	}

	return *item, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
