package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TradeState string

const (
	TradeStatePending    TradeState = "pending"
	TradeStateInProgress TradeState = "in_progress"
	TradeStateCompleted  TradeState = "completed"
)

// CompletionPhrase is a wire-level contract with whatever produces transcript
// entries. Do not localize it.
const CompletionPhrase = "trade successful"

// DefaultTranscriptEntry seeds a new agreement's transcript.
const DefaultTranscriptEntry = "negotiating"

type TradeAgreement struct {
	Id              uuid.UUID
	ChatRoomId      uuid.UUID
	User1Accepted   bool
	User2Accepted   bool
	State           TradeState
	Transcript      []string
	CompletedAt     *time.Time
	RewardGrantedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewTradeAgreement(roomId uuid.UUID) *TradeAgreement {
	return &TradeAgreement{
		Id:         uuid.New(),
		ChatRoomId: roomId,
		State:      TradeStatePending,
		Transcript: []string{DefaultTranscriptEntry},
	}
}

// DeriveState computes the lifecycle state from the acceptance flags.
// Completed is terminal: it is returned untouched along with its timestamp.
func DeriveState(current TradeState, user1Accepted, user2Accepted bool, completedAt *time.Time, now time.Time) (TradeState, *time.Time) {
	if current == TradeStateCompleted {
		return current, completedAt
	}
	if user1Accepted && user2Accepted {
		if completedAt == nil {
			t := now
			completedAt = &t
		}
		return TradeStateInProgress, completedAt
	}
	return TradeStatePending, nil
}

// IsCompletionPhrase compares case-insensitively after trimming.
func IsCompletionPhrase(entry string) bool {
	return strings.EqualFold(strings.TrimSpace(entry), CompletionPhrase)
}

func (a *TradeAgreement) LastEntry() (string, bool) {
	if len(a.Transcript) == 0 {
		return "", false
	}
	return a.Transcript[len(a.Transcript)-1], true
}

// Toggle flips the participant's flag and re-derives the state.
func (a *TradeAgreement) Toggle(slot int, now time.Time) {
	switch slot {
	case 1:
		a.User1Accepted = !a.User1Accepted
	case 2:
		a.User2Accepted = !a.User2Accepted
	default:
		return
	}
	a.State, a.CompletedAt = DeriveState(a.State, a.User1Accepted, a.User2Accepted, a.CompletedAt, now)
}

// AppendEntries adds entries not already present (exact match) and returns how many were added.
func (a *TradeAgreement) AppendEntries(entries []string) int {
	seen := make(map[string]struct{}, len(a.Transcript))
	for _, e := range a.Transcript {
		seen[e] = struct{}{}
	}
	added := 0
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		a.Transcript = append(a.Transcript, e)
		added++
	}
	return added
}

// ReadyToComplete is the completion check predicate.
func (a *TradeAgreement) ReadyToComplete() bool {
	if a.State != TradeStateInProgress {
		return false
	}
	last, ok := a.LastEntry()
	return ok && IsCompletionPhrase(last)
}

func (a *TradeAgreement) Complete(now time.Time) {
	t := now
	a.State = TradeStateCompleted
	a.CompletedAt = &t
}

// Reset is the administrative override; it may move a completed agreement back to pending.
// RewardGrantedAt survives so a later re-completion does not pay out twice.
func (a *TradeAgreement) Reset() {
	a.User1Accepted = false
	a.User2Accepted = false
	a.State = TradeStatePending
	a.CompletedAt = nil
}

// DeletionAllowed is the gate for an explicit room deletion.
func (a *TradeAgreement) DeletionAllowed() bool {
	if a.User1Accepted && a.User2Accepted {
		return true
	}
	if a.State == TradeStateCompleted {
		return true
	}
	last, ok := a.LastEntry()
	return ok && IsCompletionPhrase(last)
}
