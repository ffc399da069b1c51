package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
)

// Who selects whose tracked dates a toggle applies to.
type Who string

// Axis selects which of the two independent date categories a toggle
// applies to.
type Axis string

const (
	WhoSelf    Who = "self"
	WhoPartner Who = "partner"

	AxisFlow     Axis = "flow"
	AxisIntimacy Axis = "intimacy"
)

// Sheet is one session's working copy of the four tracked-date sets.
// The self sets mirror storage; the partner sets start as a read-only
// mirror of the partner's record and absorb local-only annotations.
type Sheet struct {
	SelfFlow        model.DateSet
	SelfIntimacy    model.DateSet
	PartnerFlow     model.DateSet
	PartnerIntimacy model.DateSet
	PartnerNickname string
	Linked          bool
}

// Merged recomputes the combined calendar marking from the four sets.
// There is no incremental path; every call rebuilds the full result.
func (sh *Sheet) Merged() map[string]model.DayMark {
	return model.MergeCalendars(sh.SelfFlow, sh.SelfIntimacy, sh.PartnerFlow, sh.PartnerIntimacy)
}

// Calendar loads calendar sheets and applies day toggles with the
// persistence asymmetry the tracker wants: self toggles are stored,
// partner toggles live only in the sheet.
type Calendar struct {
	users   model.UserStore
	linking *Linking
	logger  *logger.Logger
}

func NewCalendar(users model.UserStore, linking *Linking, logger *logger.Logger) *Calendar {
	return &Calendar{users: users, linking: linking, logger: logger}
}

// Load fetches the user's own record and, when linked, the partner's
// mirror, and builds a fresh sheet.
func (s *Calendar) Load(ctx context.Context) (*Sheet, error) {
	session, err := model.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	sheet := &Sheet{
		SelfFlow:        user.FlowDates.Clone(),
		SelfIntimacy:    user.IntimacyDates.Clone(),
		PartnerFlow:     model.NewDateSet(),
		PartnerIntimacy: model.NewDateSet(),
	}

	if !user.Linked() {
		return sheet, nil
	}

	partner, err := s.linking.Partner(ctx)
	if errors.Is(err, model.ErrCodeNotFound) {
		// Dangling link; show own data only.
		s.logger.Info("Calendar: partner reference is dangling", "user_id", user.ID)
		return sheet, nil
	}
	if err != nil {
		return nil, err
	}

	sheet.Linked = true
	sheet.PartnerNickname = partner.Nickname
	sheet.PartnerFlow = partner.FlowDates.Clone()
	sheet.PartnerIntimacy = partner.IntimacyDates.Clone()
	return sheet, nil
}

// Toggle flips membership of day in exactly one of the four sets.
// Self-axis toggles persist the full resulting set; partner-axis
// toggles never touch the partner's stored record.
func (s *Calendar) Toggle(ctx context.Context, sheet *Sheet, day string, who Who, axis Axis) (bool, error) {
	if !model.ValidDay(day) {
		return false, model.ErrInvalidDay
	}

	set, err := sheet.target(who, axis)
	if err != nil {
		return false, err
	}
	marked := set.Toggle(day)

	if who == WhoPartner {
		return marked, nil
	}

	session, err := model.SessionFromContext(ctx)
	if err != nil {
		// Undo the local flip so the sheet stays true to storage.
		set.Toggle(day)
		return false, err
	}

	patch := model.UserPatch{}
	switch axis {
	case AxisFlow:
		patch.FlowDates = model.Set(set.Clone())
	case AxisIntimacy:
		patch.IntimacyDates = model.Set(set.Clone())
	}

	if _, err := s.users.Update(ctx, session.UserID, patch); err != nil {
		set.Toggle(day)
		return false, fmt.Errorf("failed to store dates: %w", err)
	}

	return marked, nil
}

func (sh *Sheet) target(who Who, axis Axis) (model.DateSet, error) {
	switch {
	case who == WhoSelf && axis == AxisFlow:
		return sh.SelfFlow, nil
	case who == WhoSelf && axis == AxisIntimacy:
		return sh.SelfIntimacy, nil
	case who == WhoPartner && axis == AxisFlow:
		return sh.PartnerFlow, nil
	case who == WhoPartner && axis == AxisIntimacy:
		return sh.PartnerIntimacy, nil
	}
	return nil, fmt.Errorf("unknown toggle target %q/%q", who, axis)
}
