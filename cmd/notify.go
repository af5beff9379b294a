package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/leaveflow/internal/notification"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification commands",
	Long:  `Send notification emails by hand to check the mail settings`,
}

var notifyWelcomeCmd = &cobra.Command{
	Use:   "welcome",
	Short: "Send a welcome email",
	Long:  `Render the welcome email and send it through the configured sender, reporting any delivery error`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sendWelcome(notifyTo, notifyName)
	},
}

var (
	notifyTo   string
	notifyName string
)

func sendWelcome(to, name string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Logging.Level, config.Logging.Format)

	sender, err := notification.NewSender(config.Mail, log)
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}

	dispatcher := notification.NewDispatcher(sender, notification.DispatcherConfig{Workers: 1, QueueSize: 1}, log)
	defer dispatcher.Shutdown()

	notifier, err := notification.NewNotifier(sender, dispatcher, config.App.FrontendURL, log)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	msg, err := notifier.WelcomeMessage(name, to)
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	timeout := config.Mail.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// sent inline rather than queued so delivery errors reach the terminal
	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send welcome email to %s: %w", to, err)
	}

	log.Info("welcome email sent", "to", to)
	return nil
}

func init() {
	notifyWelcomeCmd.Flags().StringVar(&notifyTo, "to", "", "Recipient email address")
	notifyWelcomeCmd.Flags().StringVar(&notifyName, "name", "there", "Recipient name")
	_ = notifyWelcomeCmd.MarkFlagRequired("to")

	notifyCmd.AddCommand(notifyWelcomeCmd)
}
