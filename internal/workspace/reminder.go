package workspace

import (
	"context"
	"sort"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type SetReminderConfigRequest struct {
	PeriodID       string
	Enabled        bool
	DaysBefore     []int
	CheckFrequency string
}

// SetReminderConfig replaces the period's reminder policy wholesale. Slices
// are copied on the way in and out, so earlier readers never share state
// with the store.
func (s *Store) SetReminderConfig(_ context.Context, req SetReminderConfigRequest) (domain.ReminderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.periods[req.PeriodID]; !ok {
		return domain.ReminderConfig{}, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", req.PeriodID)
	}
	cfg := domain.ReminderConfig{
		PeriodID:       req.PeriodID,
		Enabled:        req.Enabled,
		DaysBefore:     copyInts(req.DaysBefore),
		CheckFrequency: strings.TrimSpace(req.CheckFrequency),
	}
	s.reminderCfgs[req.PeriodID] = cfg

	out := cfg
	out.DaysBefore = copyInts(cfg.DaysBefore)
	return out, nil
}

func (s *Store) GetReminderConfig(_ context.Context, periodID string) (domain.ReminderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.reminderCfgs[periodID]
	if !ok {
		return domain.ReminderConfig{}, dErrors.Newf(dErrors.CodeNotFound, "no reminder configuration for period %s", periodID)
	}
	cfg.DaysBefore = copyInts(cfg.DaysBefore)
	return cfg, nil
}

type RecordReminderSentRequest struct {
	DataPointID string
	DaysBefore  int
	RecipientID string
}

// RecordReminderSent appends one send fact to the reminder history. The
// external scheduler decides when to send; the store only records that it
// happened.
func (s *Store) RecordReminderSent(_ context.Context, req RecordReminderSentRequest) (domain.ReminderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dataPoints[req.DataPointID]; !ok {
		return domain.ReminderRecord{}, dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", req.DataPointID)
	}
	rec := domain.ReminderRecord{
		ID:          newID(),
		DataPointID: req.DataPointID,
		DaysBefore:  req.DaysBefore,
		SentAt:      s.now(),
		RecipientID: req.RecipientID,
	}
	s.reminderSends = append(s.reminderSends, rec)
	s.metrics.IncRemindersRecorded()
	return rec, nil
}

// HasReminderBeenSentToday answers the scheduler's idempotency query: true
// iff a reminder for the same data point and the same days-before threshold
// was already recorded on the current UTC calendar day.
func (s *Store) HasReminderBeenSentToday(_ context.Context, dataPointID string, daysBefore int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todayY, todayM, todayD := s.now().UTC().Date()
	for _, rec := range s.reminderSends {
		if rec.DataPointID != dataPointID || rec.DaysBefore != daysBefore {
			continue
		}
		y, m, d := rec.SentAt.UTC().Date()
		if y == todayY && m == todayM && d == todayD {
			return true
		}
	}
	return false
}

type NotifyRequest struct {
	RecipientID string
	Subject     string
	Body        string
}

func (r *NotifyRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Body = strings.TrimSpace(r.Body)
}

func (r *NotifyRequest) Validate() error {
	if r.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "notification subject is required")
	}
	return nil
}

// Notify appends one unread row to the recipient's inbox.
func (s *Store) Notify(_ context.Context, req NotifyRequest) (domain.Notification, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.RecipientID]; !ok {
		return domain.Notification{}, dErrors.Newf(dErrors.CodeNotFound, "recipient %s not found", req.RecipientID)
	}
	n := domain.Notification{
		ID:          newID(),
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedAt:   s.now(),
	}
	s.notifications = append(s.notifications, n)
	s.metrics.IncNotificationsSent()
	return n, nil
}

// ListNotifications returns the recipient's inbox, newest first.
func (s *Store) ListNotifications(_ context.Context, recipientID string) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkNotificationRead flips the read flag. Re-marking a read notification is
// a no-op.
func (s *Store) MarkNotificationRead(_ context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == notificationID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeNotFound, "notification %s not found", notificationID)
}
