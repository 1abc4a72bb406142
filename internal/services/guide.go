// guide.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/localnerve/runway/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	// GuideSentMessage answers a delivered guide
	GuideSentMessage = "Setup guide sent successfully!"
	// GuideFallbackMessage answers every other outcome when failures are downgraded
	GuideFallbackMessage = "Email sending soon. Excited to have you here!"

	guideSource = "mobile_landing"
)

// EmailRecorder is the part of storage the guide sender writes audit rows to
type EmailRecorder interface {
	SaveEmailRecord(ctx context.Context, rec models.EmailRecord) (*models.EmailRecord, error)
}

// GuideOutcome is the final stage of one delivery attempt
type GuideOutcome struct {
	AttemptID string
	Status    models.EmailStatus
	Err       error
}

// GuideSender delivers the setup guide and audits every stage of the attempt
type GuideSender struct {
	records EmailRecorder
	mailer  Mailer
	log     *logrus.Logger
	total   *prometheus.CounterVec
}

// NewGuideSender creates a sender. mailer may be nil, in which case every attempt is skipped.
// The outcome counter is registered with reg when reg is not nil.
func NewGuideSender(records EmailRecorder, mailer Mailer, log *logrus.Logger, reg prometheus.Registerer) *GuideSender {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runway_guide_emails_total",
		Help: "Setup guide delivery attempts by final status.",
	}, []string{"status"})

	if reg != nil {
		if err := reg.Register(total); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					total = existing
				}
			} else {
				log.WithError(err).Warn("Failed to register guide email counter")
			}
		}
	}

	return &GuideSender{records: records, mailer: mailer, log: log, total: total}
}

// Send runs one attempt: requested, then skipped, sent, failed or error.
// Audit write failures are logged and never stop the attempt.
func (g *GuideSender) Send(ctx context.Context, email string) GuideOutcome {
	out := GuideOutcome{AttemptID: uuid.NewString()}

	g.record(ctx, out.AttemptID, email, models.EmailRequested, map[string]interface{}{"email": email})

	if isNilMailer(g.mailer) {
		out.Status = models.EmailSkipped
		g.record(ctx, out.AttemptID, email, out.Status, map[string]string{"reason": "email provider not configured"})
		g.total.WithLabelValues(string(out.Status)).Inc()
		return out
	}

	id, err := g.mailer.SendGuide(ctx, email)
	switch {
	case err == nil:
		out.Status = models.EmailSent
		g.record(ctx, out.AttemptID, email, out.Status, map[string]string{"id": id})
	case isTransportFailure(err):
		out.Status, out.Err = models.EmailError, err
		g.record(ctx, out.AttemptID, email, out.Status, map[string]string{"error": err.Error()})
	default:
		out.Status, out.Err = models.EmailFailed, err
		g.record(ctx, out.AttemptID, email, out.Status, map[string]string{"error": err.Error()})
	}

	if out.Err != nil {
		g.log.WithError(out.Err).WithFields(logrus.Fields{
			"email":      email,
			"status":     out.Status,
			"attempt_id": out.AttemptID,
		}).Warn("Setup guide delivery failed")
	}
	g.total.WithLabelValues(string(out.Status)).Inc()
	return out
}

func (g *GuideSender) record(ctx context.Context, attemptID, email string, status models.EmailStatus, payload interface{}) {
	data, err := models.NewJSON(payload)
	if err != nil {
		g.log.WithError(err).Warn("Failed to encode email record payload")
	}
	_, err = g.records.SaveEmailRecord(ctx, models.EmailRecord{
		AttemptID:    attemptID,
		Email:        email,
		Status:       status,
		Source:       guideSource,
		ResponseData: data,
	})
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"email":  email,
			"status": status,
		}).Error("Failed to save email record")
	}
}

func isNilMailer(m Mailer) bool {
	if m == nil {
		return true
	}
	r, ok := m.(*ResendMailer)
	return ok && r == nil
}
