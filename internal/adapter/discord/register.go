package discord

import "github.com/osgard/sentinel/internal/port/notifier"

func init() {
	notifier.Register(notifier.ChannelDiscord, func(config map[string]string) (notifier.Notifier, error) {
		return NewNotifier(config["webhook_url"]), nil
	})
}
