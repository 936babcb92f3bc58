package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/period"
	"subscription-tracker-be/pkg/reminder"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	List(ctx context.Context) ([]entity.Subscription, error)
	Get(ctx context.Context, id string) (*entity.Subscription, error)
	Create(ctx context.Context, req *dto.SubscriptionRequest) (*entity.Subscription, error)
	Update(ctx context.Context, id string, req *dto.SubscriptionRequest) (*entity.Subscription, error)
	Delete(ctx context.Context, id string) error
	ManualRenew(ctx context.Context, id string, req *dto.RenewRequest) (*entity.Subscription, error)
	DeletePaymentRecord(ctx context.Context, subscriptionId, paymentId string) (*entity.Subscription, error)
	UpdatePaymentRecord(ctx context.Context, subscriptionId, paymentId string, req *dto.UpdatePaymentRequest) (*entity.Subscription, error)
	ToggleStatus(ctx context.Context, id string, isActive bool) (*entity.Subscription, error)
}

type subscriptionService struct {
	repo     contract.SubscriptionRepository
	settings contract.SettingsRepository
	logger   logger.ILogger
	now      func() time.Time
}

func NewSubscriptionService(
	repo contract.SubscriptionRepository,
	settings contract.SettingsRepository,
	log logger.ILogger,
	clock func() time.Time,
) ISubscriptionService {
	if clock == nil {
		clock = time.Now
	}
	return &subscriptionService{
		repo:     repo,
		settings: settings,
		logger:   log,
		now:      clock,
	}
}

func (s *subscriptionService) loadSettings(ctx context.Context) entity.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("SUBSCRIPTION", "Settings unreadable, using defaults", map[string]interface{}{"error": err.Error()})
	}
	return settings
}

func (s *subscriptionService) load(ctx context.Context) ([]entity.Subscription, error) {
	subs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("operation failed: %w", err)
	}
	return subs, nil
}

func (s *subscriptionService) save(ctx context.Context, subs []entity.Subscription) error {
	if err := s.repo.SaveAll(ctx, subs); err != nil {
		return fmt.Errorf("operation failed: %w", err)
	}
	return nil
}

func indexOf(subs []entity.Subscription, id string) int {
	for i := range subs {
		if subs[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *subscriptionService) List(ctx context.Context) ([]entity.Subscription, error) {
	return s.load(ctx)
}

func (s *subscriptionService) Get(ctx context.Context, id string) (*entity.Subscription, error) {
	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, id)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	return &subs[i], nil
}

// normalizeExpiry validates the requested expiry and rolls it forward past
// now when it is overdue and the request defines a period.
func normalizeExpiry(req *dto.SubscriptionRequest, now time.Time, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ExpiryDate) == "" {
		return time.Time{}, fmt.Errorf("%w: name and expiryDate are required", ErrValidation)
	}
	expiry, err := parseDate(req.ExpiryDate, loc)
	if err != nil {
		return time.Time{}, err
	}
	if req.UseLunar {
		if err := requireLunarRange(expiry, loc); err != nil {
			return time.Time{}, err
		}
	}

	if req.PeriodValue < 1 || req.PeriodUnit == "" || !expiry.Before(now) {
		return expiry, nil
	}
	spec := period.Spec{
		Value:    req.PeriodValue,
		Unit:     period.Unit(req.PeriodUnit),
		UseLunar: req.UseLunar,
		Mode:     period.ModeCycle,
		Location: loc,
	}
	next, _, err := period.CatchUp(expiry, now, spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return next, nil
}

func (s *subscriptionService) Create(ctx context.Context, req *dto.SubscriptionRequest) (*entity.Subscription, error) {
	settings := s.loadSettings(ctx)
	loc := settings.Location()
	now := s.now()

	expiry, err := normalizeExpiry(req, now, loc)
	if err != nil {
		return nil, err
	}
	startDate, err := parseOptionalDate(req.StartDate, loc)
	if err != nil {
		return nil, err
	}

	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sub := entity.Subscription{
		Id:               uuid.NewString(),
		Name:             strings.TrimSpace(req.Name),
		CustomType:       req.CustomType,
		SubscriptionMode: period.ModeCycle,
		StartDate:        startDate,
		ExpiryDate:       expiry,
		PeriodValue:      1,
		PeriodUnit:       period.Month,
		Notes:            req.Notes,
		Currency:         entity.DefaultCurrency,
		PaymentHistory:   []entity.PaymentRecord{},
		IsActive:         req.IsActive == nil || *req.IsActive,
		AutoRenew:        req.AutoRenew == nil || *req.AutoRenew,
		UseLunar:         req.UseLunar,
		CreatedAt:        now,
	}
	if req.SubscriptionMode == string(period.ModeReset) {
		sub.SubscriptionMode = period.ModeReset
	}
	if req.Category != nil {
		sub.Category = strings.TrimSpace(*req.Category)
	}
	if req.PeriodValue > 0 {
		sub.PeriodValue = req.PeriodValue
	}
	if req.PeriodUnit != "" {
		sub.PeriodUnit = period.Unit(req.PeriodUnit)
	}
	if req.Currency != "" {
		sub.Currency = req.Currency
	}
	sub.ApplyReminder(reminder.Resolve(requestReminderSource(req)))

	paidAt := now
	if startDate != nil {
		paidAt = *startDate
	}
	sub.LastPaymentDate = entity.TimePtr(paidAt)

	if req.Amount != nil && *req.Amount > 0 {
		sub.Amount = *req.Amount
		sub.PaymentHistory = append(sub.PaymentHistory, entity.PaymentRecord{
			Id:          uuid.NewString(),
			Date:        paidAt,
			Amount:      sub.Amount,
			Type:        entity.PaymentTypeInitial,
			Note:        "Initial subscription",
			PeriodStart: entity.TimePtr(paidAt),
			PeriodEnd:   entity.TimePtr(expiry),
		})
	}

	subs = append(subs, sub)
	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}

	s.logger.Info("SUBSCRIPTION", "Subscription created", map[string]interface{}{"id": sub.Id, "name": sub.Name})
	return &sub, nil
}

func requestReminderSource(req *dto.SubscriptionRequest) reminder.Source {
	src := reminder.Source{
		Value: req.ReminderValue,
		Days:  req.ReminderDays,
		Hours: req.ReminderHours,
	}
	if req.ReminderUnit != nil {
		src.Unit = *req.ReminderUnit
	}
	return src
}

func (s *subscriptionService) Update(ctx context.Context, id string, req *dto.SubscriptionRequest) (*entity.Subscription, error) {
	settings := s.loadSettings(ctx)
	loc := settings.Location()
	now := s.now()

	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, id)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}

	expiry, err := normalizeExpiry(req, now, loc)
	if err != nil {
		return nil, err
	}
	startDate, err := parseOptionalDate(req.StartDate, loc)
	if err != nil {
		return nil, err
	}

	old := subs[i]
	sub := old.Clone()

	// reminder fields missing from the request fall back to the stored ones
	stored := old.ReminderSource()
	src := requestReminderSource(req)
	if req.ReminderUnit == nil {
		src.Unit = stored.Unit
	}
	if !req.ReminderValue.Set {
		src.Value = stored.Value
	}
	if !req.ReminderDays.Set {
		src.Days = stored.Days
	}
	if !req.ReminderHours.Set {
		src.Hours = stored.Hours
	}
	sub.ApplyReminder(reminder.Resolve(src))

	if req.Amount != nil && *req.Amount != old.Amount {
		sub.Amount = *req.Amount
		for j := range sub.PaymentHistory {
			if sub.PaymentHistory[j].Type == entity.PaymentTypeInitial {
				sub.PaymentHistory[j].Amount = sub.Amount
				break
			}
		}
	}

	sub.Name = strings.TrimSpace(req.Name)
	if req.SubscriptionMode != "" {
		sub.SubscriptionMode = period.Mode(req.SubscriptionMode)
	}
	sub.SubscriptionMode = sub.Mode()
	if req.CustomType != "" {
		sub.CustomType = req.CustomType
	}
	if req.Category != nil {
		sub.Category = strings.TrimSpace(*req.Category)
	}
	if startDate != nil {
		sub.StartDate = startDate
	}
	sub.ExpiryDate = expiry
	if req.PeriodValue > 0 {
		sub.PeriodValue = req.PeriodValue
	}
	if sub.PeriodValue < 1 {
		sub.PeriodValue = 1
	}
	if req.PeriodUnit != "" {
		sub.PeriodUnit = period.Unit(req.PeriodUnit)
	}
	if !sub.PeriodUnit.Valid() {
		sub.PeriodUnit = period.Month
	}
	sub.Notes = req.Notes
	if req.Currency != "" {
		sub.Currency = req.Currency
	}
	if sub.Currency == "" {
		sub.Currency = entity.DefaultCurrency
	}
	if sub.LastPaymentDate == nil {
		switch {
		case sub.StartDate != nil:
			sub.LastPaymentDate = entity.TimePtr(*sub.StartDate)
		case !sub.CreatedAt.IsZero():
			sub.LastPaymentDate = entity.TimePtr(sub.CreatedAt)
		default:
			sub.LastPaymentDate = entity.TimePtr(now)
		}
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}
	sub.UseLunar = req.UseLunar
	sub.UpdatedAt = entity.TimePtr(now)

	subs[i] = sub
	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *subscriptionService) Delete(ctx context.Context, id string) error {
	subs, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(subs, id)
	if i == -1 {
		return ErrSubscriptionNotFound
	}
	subs = append(subs[:i], subs[i+1:]...)
	return s.save(ctx, subs)
}

func (s *subscriptionService) ManualRenew(ctx context.Context, id string, req *dto.RenewRequest) (*entity.Subscription, error) {
	settings := s.loadSettings(ctx)
	loc := settings.Location()
	now := s.now()

	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, id)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	sub := subs[i].Clone()
	if sub.PeriodValue < 1 || !sub.PeriodUnit.Valid() {
		return nil, ErrNoRenewalPeriod
	}

	paymentDate := now
	if req.PaymentDate != "" {
		if paymentDate, err = parseDate(req.PaymentDate, loc); err != nil {
			return nil, err
		}
	}
	amount := sub.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	multiplier := req.PeriodMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = "Manual renewal"
	}

	start := paymentDate
	if sub.Mode() == period.ModeCycle && sub.ExpiryDate.After(paymentDate) {
		start = sub.ExpiryDate
	}

	var expiry time.Time
	if sub.UseLunar {
		// lunar periods are applied one at a time so each step re-clamps the day
		expiry = start
		for n := 0; n < multiplier; n++ {
			if expiry, err = period.Add(expiry, sub.PeriodValue, sub.PeriodUnit, true, loc); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}
	} else {
		expiry, err = period.Add(start, sub.PeriodValue*multiplier, sub.PeriodUnit, false, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	sub.PaymentHistory = append(sub.PaymentHistory, entity.PaymentRecord{
		Id:          uuid.NewString(),
		Date:        paymentDate,
		Amount:      amount,
		Type:        entity.PaymentTypeManual,
		Note:        note,
		PeriodStart: entity.TimePtr(start),
		PeriodEnd:   entity.TimePtr(expiry),
	})
	sub.PaymentHistory = TrimPaymentHistory(sub.PaymentHistory, settings.HistoryLimit())
	sub.StartDate = entity.TimePtr(start)
	sub.ExpiryDate = expiry
	sub.LastPaymentDate = entity.TimePtr(paymentDate)
	sub.UpdatedAt = entity.TimePtr(now)

	subs[i] = sub
	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}

	s.logger.Info("SUBSCRIPTION", "Subscription renewed manually", map[string]interface{}{
		"id":         sub.Id,
		"expiryDate": expiry.Format(time.RFC3339),
		"periods":    multiplier,
	})
	return &sub, nil
}

func paymentIndex(records []entity.PaymentRecord, id string) int {
	for i := range records {
		if records[i].Id == id {
			return i
		}
	}
	return -1
}

func latestPaymentDate(records []entity.PaymentRecord) time.Time {
	latest := records[0].Date
	for _, r := range records[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}

// latestCoverage picks the record whose window ends last. Records without a
// periodEnd rank lowest; ties go to the later payment date, then to the later
// position in the history.
func latestCoverage(records []entity.PaymentRecord) entity.PaymentRecord {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		ea, eb := time.Time{}, time.Time{}
		if ra.PeriodEnd != nil {
			ea = *ra.PeriodEnd
		}
		if rb.PeriodEnd != nil {
			eb = *rb.PeriodEnd
		}
		if !ea.Equal(eb) {
			return ea.After(eb)
		}
		if !ra.Date.Equal(rb.Date) {
			return ra.Date.After(rb.Date)
		}
		return order[a] > order[b]
	})
	return records[order[0]]
}

func (s *subscriptionService) DeletePaymentRecord(ctx context.Context, subscriptionId, paymentId string) (*entity.Subscription, error) {
	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, subscriptionId)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	sub := subs[i].Clone()
	j := paymentIndex(sub.PaymentHistory, paymentId)
	if j == -1 {
		return nil, ErrPaymentNotFound
	}

	deleted := sub.PaymentHistory[j]
	sub.PaymentHistory = append(sub.PaymentHistory[:j], sub.PaymentHistory[j+1:]...)

	if len(sub.PaymentHistory) > 0 {
		if latest := latestCoverage(sub.PaymentHistory); latest.PeriodEnd != nil {
			sub.ExpiryDate = *latest.PeriodEnd
		}
		sub.LastPaymentDate = entity.TimePtr(latestPaymentDate(sub.PaymentHistory))
	} else {
		if deleted.PeriodStart != nil {
			sub.ExpiryDate = *deleted.PeriodStart
		}
		switch {
		case sub.StartDate != nil:
			sub.LastPaymentDate = entity.TimePtr(*sub.StartDate)
		case !sub.CreatedAt.IsZero():
			sub.LastPaymentDate = entity.TimePtr(sub.CreatedAt)
		default:
			sub.LastPaymentDate = entity.TimePtr(sub.ExpiryDate)
		}
	}

	subs[i] = sub
	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *subscriptionService) UpdatePaymentRecord(ctx context.Context, subscriptionId, paymentId string, req *dto.UpdatePaymentRequest) (*entity.Subscription, error) {
	settings := s.loadSettings(ctx)

	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, subscriptionId)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	sub := subs[i].Clone()
	j := paymentIndex(sub.PaymentHistory, paymentId)
	if j == -1 {
		return nil, ErrPaymentNotFound
	}

	record := &sub.PaymentHistory[j]
	if req.Date != "" {
		date, err := parseDate(req.Date, settings.Location())
		if err != nil {
			return nil, err
		}
		record.Date = date
	}
	if req.Amount != nil {
		record.Amount = *req.Amount
	}
	if req.Note != nil {
		record.Note = *req.Note
	}
	sub.LastPaymentDate = entity.TimePtr(latestPaymentDate(sub.PaymentHistory))

	subs[i] = sub
	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *subscriptionService) ToggleStatus(ctx context.Context, id string, isActive bool) (*entity.Subscription, error) {
	subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(subs, id)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	subs[i].IsActive = isActive
	subs[i].UpdatedAt = entity.TimePtr(s.now())

	if err := s.save(ctx, subs); err != nil {
		return nil, err
	}
	sub := subs[i]
	return &sub, nil
}

// TrimPaymentHistory bounds records to limit (clamped to [10, 1000]). The
// first initial record survives; the rest is the newest non-initial records
// in their original order.
func TrimPaymentHistory(records []entity.PaymentRecord, limit int) []entity.PaymentRecord {
	limit = entity.ClampHistoryLimit(limit)
	if len(records) <= limit {
		return records
	}

	var initial *entity.PaymentRecord
	others := make([]entity.PaymentRecord, 0, len(records))
	for i := range records {
		if records[i].Type == entity.PaymentTypeInitial {
			if initial == nil {
				initial = &records[i]
			}
			continue
		}
		others = append(others, records[i])
	}

	keep := limit
	if initial != nil {
		keep--
	}
	if len(others) > keep {
		others = others[len(others)-keep:]
	}

	out := make([]entity.PaymentRecord, 0, limit)
	if initial != nil {
		out = append(out, *initial)
	}
	return append(out, others...)
}

// AutoRenew rolls an overdue subscription forward until its expiry is after
// now and appends one consolidated auto payment record. It returns the number
// of periods applied; zero means nothing changed.
func AutoRenew(sub *entity.Subscription, now time.Time, loc *time.Location, historyLimit int) (int, error) {
	spec := sub.PeriodSpec(loc)
	expiry, added, err := period.CatchUp(sub.ExpiryDate, now, spec)
	if err != nil {
		return 0, err
	}
	if added == 0 {
		return 0, nil
	}

	start := sub.ExpiryDate
	modeText := "cycle mode"
	if spec.Mode == period.ModeReset {
		start = now
		modeText = "reset mode"
	}
	note := fmt.Sprintf("Auto renewal (%s)", modeText)
	if added > 1 {
		note = fmt.Sprintf("Auto renewal (%s, caught up %d periods)", modeText, added)
	}

	sub.PaymentHistory = append(sub.PaymentHistory, entity.PaymentRecord{
		Id:          uuid.NewString(),
		Date:        now,
		Amount:      sub.Amount,
		Type:        entity.PaymentTypeAuto,
		Note:        note,
		PeriodStart: entity.TimePtr(start),
		PeriodEnd:   entity.TimePtr(expiry),
	})
	sub.PaymentHistory = TrimPaymentHistory(sub.PaymentHistory, historyLimit)
	sub.StartDate = entity.TimePtr(start)
	sub.ExpiryDate = expiry
	sub.LastPaymentDate = entity.TimePtr(now)
	return added, nil
}
