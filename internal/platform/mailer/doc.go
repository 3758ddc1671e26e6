// Package mailer sends transactional email. It provides an SMTP-backed
// implementation for production and a log-only implementation for
// environments without a mail relay.
package mailer
