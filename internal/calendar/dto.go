package calendar

import (
	"github.com/danekja/ymanager/internal"
)

// EntryDTO is the wire form of a calendar entry.
type EntryDTO struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Type   Kind            `json:"type"`
	Date   string          `json:"date"`
	From   *string         `json:"from,omitempty"`
	To     *string         `json:"to,omitempty"`
	Hours  float64         `json:"hours,omitempty"`
	Status internal.Status `json:"status"`
}

func ToDTO(e *Entry) *EntryDTO {
	dto := &EntryDTO{
		ID:     e.ID,
		UserID: e.OwnerID,
		Type:   e.Kind,
		Date:   FormatDate(e.Date),
		Hours:  e.Hours,
		Status: e.Status,
	}
	if e.Window != nil {
		from := FormatClock(e.Window.FromMinute)
		to := FormatClock(e.Window.ToMinute)
		dto.From = &from
		dto.To = &to
	}
	return dto
}

func ToDTOSlice(entries []*Entry) []*EntryDTO {
	result := make([]*EntryDTO, len(entries))
	for i, e := range entries {
		result[i] = ToDTO(e)
	}
	return result
}

// CreateEntryDTO is the request payload of POST /user/calendar/create. An
// absent user_id targets the actor's own calendar.
type CreateEntryDTO struct {
	UserID *int64  `json:"user_id,omitempty"`
	Type   string  `json:"type"`
	Date   string  `json:"date"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
	Hours  float64 `json:"hours,omitempty"`
}

// ToEntry validates the payload and builds the domain entry, status unset.
func (dto CreateEntryDTO) ToEntry() (*Entry, error) {
	kind, ok := ParseKind(dto.Type)
	if !ok {
		return nil, internal.NewValidationError("unknown entry type", internal.ErrCodeValidationFailed, "error.validation")
	}

	date, err := ParseDate(dto.Date)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Kind: kind, Date: date}

	window, err := parseWindow(kind, dto.From, dto.To)
	if err != nil {
		return nil, err
	}
	entry.Window = window

	switch kind {
	case KindOvertime:
		if dto.Hours <= 0 || dto.Hours > 24 {
			return nil, internal.NewValidationError("overtime hours must be in (0, 24]", internal.ErrCodeValidationFailed, "error.validation")
		}
		entry.Hours = dto.Hours
	default:
		if dto.Hours != 0 {
			return nil, internal.NewValidationError("hours are only valid for overtime entries", internal.ErrCodeValidationFailed, "error.validation")
		}
	}

	return entry, nil
}

// UpdateEntryDTO is the request payload of PUT /user/calendar/edit. The kind
// of an existing entry is immutable; date, window and hours are replaced.
type UpdateEntryDTO struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	From  *string `json:"from,omitempty"`
	To    *string `json:"to,omitempty"`
	Hours float64 `json:"hours,omitempty"`
}

// Apply writes the patch onto the entry after validation.
func (dto UpdateEntryDTO) Apply(e *Entry) error {
	date, err := ParseDate(dto.Date)
	if err != nil {
		return err
	}

	window, err := parseWindow(e.Kind, dto.From, dto.To)
	if err != nil {
		return err
	}

	if e.Kind == KindOvertime {
		if dto.Hours <= 0 || dto.Hours > 24 {
			return internal.NewValidationError("overtime hours must be in (0, 24]", internal.ErrCodeValidationFailed, "error.validation")
		}
		e.Hours = dto.Hours
	} else if dto.Hours != 0 {
		return internal.NewValidationError("hours are only valid for overtime entries", internal.ErrCodeValidationFailed, "error.validation")
	}

	e.Date = date
	e.Window = window
	return nil
}

func parseWindow(kind Kind, from, to *string) (*Window, error) {
	if from == nil && to == nil {
		return nil, nil
	}
	if kind != KindVacation {
		return nil, internal.NewValidationError("a time window is only valid for vacation entries", internal.ErrCodeValidationFailed, "error.validation")
	}
	if from == nil || to == nil {
		return nil, internal.NewValidationError("both window bounds are required", internal.ErrCodeValidationFailed, "error.validation")
	}

	fromMin, err := ParseClock(*from)
	if err != nil {
		return nil, err
	}
	toMin, err := ParseClock(*to)
	if err != nil {
		return nil, err
	}
	if toMin <= fromMin {
		return nil, internal.NewValidationError("window end must be after its start", internal.ErrCodeValidationFailed, "error.validation")
	}
	return &Window{FromMinute: fromMin, ToMinute: toMin}, nil
}
