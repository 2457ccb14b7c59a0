package main

import (
	"errors"
	"fmt"
)

// VerifyPhase is the state of one open detail/verification dialog.
type VerifyPhase string

const (
	PhaseViewing          VerifyPhase = "viewing"
	PhaseSelectingTags    VerifyPhase = "selecting_tags"
	PhaseConfirmingReject VerifyPhase = "confirming_reject"
	PhaseSubmitting       VerifyPhase = "submitting"
	PhaseClosed           VerifyPhase = "closed"
)

var (
	// ErrNoTagsSelected blocks an approve confirmation with zero tags; no
	// network call is issued.
	ErrNoTagsSelected = errors.New("verify: at least one tag is required")
	// ErrAlreadyDecided blocks decisions on records with an existing status.
	ErrAlreadyDecided = errors.New("verify: record already decided")
)

// VerifySession drives the decision workflow for one record:
// Viewing -> SelectingTags | ConfirmingReject -> Submitting -> Closed.
// All transition methods validate the current phase explicitly.
type VerifySession struct {
	Record   DataRecord
	Phase    VerifyPhase
	Selected map[HazardTag]bool
}

func NewVerifySession(record DataRecord) *VerifySession {
	return &VerifySession{
		Record:   record,
		Phase:    PhaseViewing,
		Selected: make(map[HazardTag]bool),
	}
}

func (v *VerifySession) invalidPhase(action string) error {
	return fmt.Errorf("verify: cannot %s in phase %s", action, v.Phase)
}

// StartApprove reveals the tag-selection step. The first approve interaction
// never submits anything.
func (v *VerifySession) StartApprove() error {
	if v.Record.Decided() {
		return ErrAlreadyDecided
	}
	if v.Phase != PhaseViewing {
		return v.invalidPhase("start approve")
	}
	v.Phase = PhaseSelectingTags
	return nil
}

// ToggleTag flips one tag selection while selecting tags.
func (v *VerifySession) ToggleTag(tag HazardTag) error {
	if v.Phase != PhaseSelectingTags {
		return v.invalidPhase("toggle tag")
	}
	if v.Selected[tag] {
		delete(v.Selected, tag)
	} else {
		v.Selected[tag] = true
	}
	return nil
}

// SetTags replaces the selection wholesale (multi-select input).
func (v *VerifySession) SetTags(tags []HazardTag) error {
	if v.Phase != PhaseSelectingTags {
		return v.invalidPhase("set tags")
	}
	v.Selected = make(map[HazardTag]bool)
	for _, t := range tags {
		v.Selected[t] = true
	}
	return nil
}

// SelectedTags returns the current selection in vocabulary order.
func (v *VerifySession) SelectedTags() []HazardTag {
	var tags []HazardTag
	for _, t := range AllHazardTags {
		if v.Selected[t] {
			tags = append(tags, t)
		}
	}
	return tags
}

// ConfirmApprove validates the selection and produces the decision payload,
// moving to Submitting. Zero selected tags is a local validation failure.
func (v *VerifySession) ConfirmApprove() (ManualVerifyRequest, error) {
	if v.Phase != PhaseSelectingTags {
		return ManualVerifyRequest{}, v.invalidPhase("confirm approve")
	}
	if len(v.Selected) == 0 {
		return ManualVerifyRequest{}, ErrNoTagsSelected
	}
	v.Phase = PhaseSubmitting
	return ManualVerifyRequest{
		ID:     v.Record.ID,
		Valid:  true,
		Status: FlagsForTags(v.SelectedTags()),
	}, nil
}

// StartReject opens the explicit confirmation step.
func (v *VerifySession) StartReject() error {
	if v.Record.Decided() {
		return ErrAlreadyDecided
	}
	if v.Phase != PhaseViewing && v.Phase != PhaseSelectingTags {
		return v.invalidPhase("start reject")
	}
	v.Phase = PhaseConfirmingReject
	return nil
}

// CancelReject returns to viewing without submitting.
func (v *VerifySession) CancelReject() error {
	if v.Phase != PhaseConfirmingReject {
		return v.invalidPhase("cancel reject")
	}
	v.Phase = PhaseViewing
	return nil
}

// ConfirmReject produces the reject payload: valid=false, all flags false.
func (v *VerifySession) ConfirmReject() (ManualVerifyRequest, error) {
	if v.Phase != PhaseConfirmingReject {
		return ManualVerifyRequest{}, v.invalidPhase("confirm reject")
	}
	v.Phase = PhaseSubmitting
	return ManualVerifyRequest{
		ID:     v.Record.ID,
		Valid:  false,
		Status: VerifyFlags{},
	}, nil
}

// SubmitFailed returns the session to its pre-submit phase with the
// accumulated selection intact, so the moderator can retry.
func (v *VerifySession) SubmitFailed() {
	if v.Phase != PhaseSubmitting {
		return
	}
	if len(v.Selected) > 0 {
		v.Phase = PhaseSelectingTags
		return
	}
	v.Phase = PhaseViewing
}

// Close ends the session and resets all transient selection state.
func (v *VerifySession) Close() {
	v.Phase = PhaseClosed
	v.Selected = make(map[HazardTag]bool)
}

// FlagsForTags builds the flag map with exactly the given tags' flags true.
func FlagsForTags(tags []HazardTag) VerifyFlags {
	var flags VerifyFlags
	for _, t := range tags {
		switch t {
		case TagObstacle:
			flags.Obstacle = true
		case TagFlood:
			flags.Flooded = true
		case TagTrafficJam:
			flags.TrafficJam = true
		case TagPolice:
			flags.Police = true
		}
	}
	return flags
}
