// mailer.go
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
	"net"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers the setup guide. It returns the provider's message id.
type Mailer interface {
	SendGuide(ctx context.Context, to string) (string, error)
}

const guideSubject = "Your Runway AI Setup Guide is Here!"

const guideHTML = `<h1>Welcome to Runway AI!</h1>
<p>Thanks for your interest! We're excited to help you elevate your training.</p>
<p>For the best experience, please use Runway AI on a <strong>laptop or desktop computer</strong>.</p>
<p><strong>Here's a quick guide to get started:</strong></p>
<ul>
  <li>Ensure you have a stable internet connection.</li>
  <li>Use a modern browser like Chrome or Firefox.</li>
  <li>Allow camera access when prompted.</li>
  <li>Explore the different modes: Practice, Test, and Routine.</li>
</ul>
<p>If you have any questions, don't hesitate to reach out to our support team.</p>
<p>Happy Training!</p>
<p>The Runway AI Team</p>`

// ResendMailer sends through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a mailer for apiKey, or nil when apiKey is empty
func NewResendMailer(apiKey, from string) *ResendMailer {
	if apiKey == "" {
		return nil
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

// SendGuide sends the setup guide to one recipient
func (r *ResendMailer) SendGuide(ctx context.Context, to string) (string, error) {
	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: guideSubject,
		Html:    guideHTML,
	})
	if err != nil {
		return "", &UpstreamError{Service: "resend", Err: err}
	}
	return sent.Id, nil
}

// isTransportFailure separates "could not reach the provider" from "provider said no"
func isTransportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
