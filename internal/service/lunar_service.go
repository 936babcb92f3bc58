package service

import (
	"context"
	"fmt"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/lunar"
)

type ILunarService interface {
	// Convert maps a solar date (YYYY-MM-DD or RFC 3339) to its lunar form.
	Convert(ctx context.Context, date string) (*dto.LunarConvertResponse, error)
}

type lunarService struct {
	settings contract.SettingsRepository
	logger   logger.ILogger
}

func NewLunarService(settings contract.SettingsRepository, log logger.ILogger) ILunarService {
	return &lunarService{settings: settings, logger: log}
}

func (s *lunarService) Convert(ctx context.Context, date string) (*dto.LunarConvertResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("SUBSCRIPTION", "Settings unreadable, using defaults", map[string]interface{}{"error": err.Error()})
	}
	loc := settings.Location()

	t, err := parseDate(date, loc)
	if err != nil {
		return nil, err
	}
	d, err := lunar.SolarTimeToLunar(t, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return &dto.LunarConvertResponse{
		Year:      d.Year,
		Month:     d.Month,
		Day:       d.Day,
		IsLeap:    d.IsLeap,
		YearName:  d.YearName(),
		MonthName: d.MonthName(),
		DayName:   d.DayName(),
		FullStr:   d.String(),
	}, nil
}
