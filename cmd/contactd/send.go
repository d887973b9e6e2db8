package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"portfolio-contact/contact"
	"portfolio-contact/form"
)

var sendFlags struct {
	url          string
	forwardedFor string
	timeout      time.Duration
	values       contact.Submission
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit the contact form to a running endpoint",
	Example: `  contactd send --url http://localhost:8080/api/contact \
    --name "Jane" --email jane@example.dev --subject "Hi" \
    --message "Let's talk about a red team engagement."`,
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.url, "url", "http://localhost:8080/api/contact", "endpoint URL")
	f.StringVar(&sendFlags.forwardedFor, "forwarded-for", "", "X-Forwarded-For value to send")
	f.DurationVar(&sendFlags.timeout, "timeout", 15*time.Second, "request timeout")
	f.StringVar(&sendFlags.values.Name, "name", "", "sender name")
	f.StringVar(&sendFlags.values.Email, "email", "", "sender email")
	f.StringVar(&sendFlags.values.Subject, "subject", "", "subject")
	f.StringVar(&sendFlags.values.Message, "message", "", "message body")
}

func runSend(cmd *cobra.Command, _ []string) error {
	var opts []form.Option
	if sendFlags.forwardedFor != "" {
		opts = append(opts, form.WithHeader("X-Forwarded-For", sendFlags.forwardedFor))
	}
	ctl := form.New(sendFlags.url, opts...)

	v := sendFlags.values
	for field, value := range map[string]string{
		contact.FieldName:    v.Name,
		contact.FieldEmail:   v.Email,
		contact.FieldSubject: v.Subject,
		contact.FieldMessage: v.Message,
	} {
		if err := ctl.Set(field, value); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sendFlags.timeout)
	defer cancel()

	sp := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	sp.Suffix = " Sending message..."
	sp.Start()
	err := ctl.Submit(ctx)
	sp.Stop()

	out := cmd.OutOrStdout()

	var invalid *form.InvalidError
	if errors.As(err, &invalid) {
		printFieldErrors(out, ctl.Errors())
	}
	fmt.Fprintf(out, "status: %s\n", ctl.Status())
	return err
}
