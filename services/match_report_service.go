package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/repositories"
	"github.com/google/uuid"
)

// MatchReportService - командная статистика матча и отчёт о матче.
type MatchReportService interface {
	ListStatistics(ctx context.Context, p *Principal, matchID uuid.UUID) ([]models.MatchStatistics, error)
	SaveStatistics(ctx context.Context, p *Principal, matchID uuid.UUID, input MatchStatisticsInput) (*models.MatchStatistics, error)
	GetReport(ctx context.Context, p *Principal, matchID uuid.UUID) (*models.MatchReport, error)
	SaveReport(ctx context.Context, p *Principal, matchID uuid.UUID, input MatchReportInput) (*models.MatchReport, error)
	ValidateReport(ctx context.Context, p *Principal, matchID uuid.UUID) (*models.MatchReport, error)
}

// MatchStatisticsInput сливается с уже сохранённой строкой команды.
type MatchStatisticsInput struct {
	TeamID               int  `json:"team_id" validate:"required,min=1"`
	PossessionPercentage *int `json:"possession_percentage" validate:"omitempty,min=0,max=100"`
	ShotsTotal           *int `json:"shots_total" validate:"omitempty,min=0"`
	ShotsOnTarget        *int `json:"shots_on_target" validate:"omitempty,min=0"`
	ShotsOffTarget       *int `json:"shots_off_target" validate:"omitempty,min=0"`
	ShotsBlocked         *int `json:"shots_blocked" validate:"omitempty,min=0"`
	PassesTotal          *int `json:"passes_total" validate:"omitempty,min=0"`
	PassesCompleted      *int `json:"passes_completed" validate:"omitempty,min=0"`
	TacklesTotal         *int `json:"tackles_total" validate:"omitempty,min=0"`
	TacklesWon           *int `json:"tackles_won" validate:"omitempty,min=0"`
	Interceptions        *int `json:"interceptions" validate:"omitempty,min=0"`
	Clearances           *int `json:"clearances" validate:"omitempty,min=0"`
	FoulsCommitted       *int `json:"fouls_committed" validate:"omitempty,min=0"`
	FoulsSuffered        *int `json:"fouls_suffered" validate:"omitempty,min=0"`
	YellowCards          *int `json:"yellow_cards" validate:"omitempty,min=0"`
	RedCards             *int `json:"red_cards" validate:"omitempty,min=0"`
	Corners              *int `json:"corners" validate:"omitempty,min=0"`
	FreeKicks            *int `json:"free_kicks" validate:"omitempty,min=0"`
	Offsides             *int `json:"offsides" validate:"omitempty,min=0"`
}

type MatchReportInput struct {
	Summary             string `json:"summary" validate:"required,max=5000"`
	KeyMoments          string `json:"key_moments" validate:"max=5000"`
	RefereeNotes        string `json:"referee_notes" validate:"max=5000"`
	HomeTeamPerformance string `json:"home_team_performance" validate:"max=5000"`
	AwayTeamPerformance string `json:"away_team_performance" validate:"max=5000"`
	Incidents           string `json:"incidents" validate:"max=5000"`
	DisciplinaryActions string `json:"disciplinary_actions" validate:"max=5000"`
	FieldConditions     string `json:"field_conditions" validate:"max=255"`
	WeatherImpact       string `json:"weather_impact" validate:"max=255"`
}

type matchReportService struct {
	matchRepo  repositories.GlobalMatchRepository
	statsRepo  repositories.StatisticsRepository
	reportRepo repositories.ReportRepository
	logger     *slog.Logger
}

func NewMatchReportService(
	matchRepo repositories.GlobalMatchRepository,
	statsRepo repositories.StatisticsRepository,
	reportRepo repositories.ReportRepository,
	logger *slog.Logger,
) MatchReportService {
	return &matchReportService{matchRepo: matchRepo, statsRepo: statsRepo, reportRepo: reportRepo, logger: logger}
}

func (s *matchReportService) ListStatistics(ctx context.Context, p *Principal, matchID uuid.UUID) ([]models.MatchStatistics, error) {
	if _, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID); err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics of match %s: %w", matchID, err)
	}
	return stats, nil
}

func (s *matchReportService) SaveStatistics(ctx context.Context, p *Principal, matchID uuid.UUID, input MatchStatisticsInput) (*models.MatchStatistics, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}
	if err := authorizeMatchTeam(p, m, input.TeamID); err != nil {
		return nil, err
	}

	existing, err := s.statsRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics of match %s: %w", matchID, err)
	}
	stats := models.MatchStatistics{MatchID: m.ID, TeamID: input.TeamID}
	for _, row := range existing {
		if row.TeamID == input.TeamID {
			stats = row
			break
		}
	}
	applyStatisticsInput(&stats, input)
	if stats.ShotsOnTarget > stats.ShotsTotal {
		return nil, fieldError("shots_on_target", "must not exceed shots_total")
	}
	if stats.PassesCompleted > stats.PassesTotal {
		return nil, fieldError("passes_completed", "must not exceed passes_total")
	}

	if err := s.statsRepo.Upsert(ctx, &stats); err != nil {
		return nil, mapReportRepoError(err)
	}
	return &stats, nil
}

func applyStatisticsInput(st *models.MatchStatistics, in MatchStatisticsInput) {
	st.PossessionPercentage = intOr(in.PossessionPercentage, st.PossessionPercentage)
	st.ShotsTotal = intOr(in.ShotsTotal, st.ShotsTotal)
	st.ShotsOnTarget = intOr(in.ShotsOnTarget, st.ShotsOnTarget)
	st.ShotsOffTarget = intOr(in.ShotsOffTarget, st.ShotsOffTarget)
	st.ShotsBlocked = intOr(in.ShotsBlocked, st.ShotsBlocked)
	st.PassesTotal = intOr(in.PassesTotal, st.PassesTotal)
	st.PassesCompleted = intOr(in.PassesCompleted, st.PassesCompleted)
	st.TacklesTotal = intOr(in.TacklesTotal, st.TacklesTotal)
	st.TacklesWon = intOr(in.TacklesWon, st.TacklesWon)
	st.Interceptions = intOr(in.Interceptions, st.Interceptions)
	st.Clearances = intOr(in.Clearances, st.Clearances)
	st.FoulsCommitted = intOr(in.FoulsCommitted, st.FoulsCommitted)
	st.FoulsSuffered = intOr(in.FoulsSuffered, st.FoulsSuffered)
	st.YellowCards = intOr(in.YellowCards, st.YellowCards)
	st.RedCards = intOr(in.RedCards, st.RedCards)
	st.Corners = intOr(in.Corners, st.Corners)
	st.FreeKicks = intOr(in.FreeKicks, st.FreeKicks)
	st.Offsides = intOr(in.Offsides, st.Offsides)
	st.PassAccuracy = passAccuracy(st.PassesCompleted, st.PassesTotal)
}

// passAccuracy - процент точных передач с двумя знаками после запятой.
func passAccuracy(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)*10000/float64(total)) / 100
}

func (s *matchReportService) GetReport(ctx context.Context, p *Principal, matchID uuid.UUID) (*models.MatchReport, error) {
	if _, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID); err != nil {
		return nil, err
	}
	report, err := s.reportRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return nil, mapReportRepoError(err)
	}
	return report, nil
}

// SaveReport создаёт или переписывает отчёт. Переписанный отчёт снова требует проверки.
func (s *matchReportService) SaveReport(ctx context.Context, p *Principal, matchID uuid.UUID, input MatchReportInput) (*models.MatchReport, error) {
	m, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionWriteReport, Target{Home: teamSide(m.HomeTeam)}); err != nil {
		return nil, err
	}
	if err := validateInput(ctx, input); err != nil {
		return nil, err
	}

	report := &models.MatchReport{
		MatchID:             m.ID,
		AuthorID:            p.UserID(),
		Summary:             strings.TrimSpace(input.Summary),
		KeyMoments:          strings.TrimSpace(input.KeyMoments),
		RefereeNotes:        strings.TrimSpace(input.RefereeNotes),
		HomeTeamPerformance: strings.TrimSpace(input.HomeTeamPerformance),
		AwayTeamPerformance: strings.TrimSpace(input.AwayTeamPerformance),
		Incidents:           strings.TrimSpace(input.Incidents),
		DisciplinaryActions: strings.TrimSpace(input.DisciplinaryActions),
		FieldConditions:     strings.TrimSpace(input.FieldConditions),
		WeatherImpact:       strings.TrimSpace(input.WeatherImpact),
	}
	if err := s.reportRepo.Upsert(ctx, report); err != nil {
		return nil, mapReportRepoError(err)
	}
	s.logger.InfoContext(ctx, "match report saved", slog.String("match_id", matchID.String()), slog.Int("author_id", report.AuthorID))
	return report, nil
}

func (s *matchReportService) ValidateReport(ctx context.Context, p *Principal, matchID uuid.UUID) (*models.MatchReport, error) {
	if _, err := visibleGlobalMatch(ctx, s.matchRepo, p, matchID); err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionValidateReport, Target{}); err != nil {
		return nil, err
	}
	report, err := s.reportRepo.Validate(ctx, matchID, p.UserID())
	if err != nil {
		return nil, mapReportRepoError(err)
	}
	s.logger.InfoContext(ctx, "match report validated", slog.String("match_id", matchID.String()), slog.Int("validated_by", p.UserID()))
	return report, nil
}

func mapReportRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrReportNotFound):
		return ErrReportNotFound
	case errors.Is(err, repositories.ErrGlobalMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrGlobalMatchTeam):
		return fieldError("team_id", "team does not exist")
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	}
	return fmt.Errorf("match report storage error: %w", integrityError(err))
}
