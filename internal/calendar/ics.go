// Package calendar renders RSVP'd events as an iCalendar feed.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	"clubhub/internal/models"

	ics "github.com/arran4/golang-ical"
)

const (
	productID     = "-//ClubHub//Campus Events//EN"
	eventDuration = time.Hour
)

// ExportICS serialises the dated event posts among posts. now stamps DTSTAMP
// so output is reproducible in tests.
func ExportICS(posts []*models.Post, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	for _, p := range posts {
		if !p.IsEvent || p.EventDate == nil {
			continue
		}
		start := p.EventDate.UTC()

		e := cal.AddEvent(fmt.Sprintf("post-%d@clubhub", p.ID))
		e.SetDtStampTime(now.UTC())
		e.SetCreatedTime(p.CreatedAt.UTC())
		e.SetModifiedAt(p.UpdatedAt.UTC())
		e.SetStartAt(start)
		e.SetEndAt(start.Add(eventDuration))
		e.SetSummary(summary(p))
		e.SetDescription(p.Caption)
		if p.EventLocation != "" {
			e.SetLocation(p.EventLocation)
		}
		e.SetURL(fmt.Sprintf("/api/student/event/%d", p.ID))
		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetClass(ics.ClassificationPublic)

		alarm := e.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger("-PT1H")
		alarm.SetDescription(summary(p))
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func summary(p *models.Post) string {
	title := p.EventTitle
	if title == "" {
		title = p.Caption
	}
	if p.Club != nil && p.Club.Name != "" {
		return fmt.Sprintf("%s (%s)", title, p.Club.Name)
	}
	return title
}
