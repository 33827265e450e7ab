package parhelion

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/access"
	"github.com/wheelercj/parhelion/database"
	"github.com/wheelercj/parhelion/kvstore"
	"github.com/wheelercj/parhelion/quotes"
)

type Bot struct {
	client   *discordgo.Session
	logger   *zap.Logger
	config   *Config
	db       database.DB
	settings *access.SettingsCache
	resolver *access.Resolver
	prefixes *access.PrefixResolver
	store    *kvstore.Store
	quotes   *quotes.Client

	commands    map[string]*Command
	commandList []*Command

	remindersMu sync.Mutex
	reminders   map[int64]*time.Timer

	stop      chan struct{}
	stopOnce  sync.Once
	startTime time.Time
}

func NewBot(config *Config, db database.DB, logger *zap.Logger) (*Bot, error) {
	client, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}
	client.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	kvDir := config.KVDir
	if kvDir == "" {
		kvDir = "./data"
	}
	store, err := kvstore.NewStore(kvDir, logger.Named("kvstore"))
	if err != nil {
		return nil, err
	}

	settings := access.NewSettingsCache(db, logger.Named("settings"))

	b := &Bot{
		client:    client,
		logger:    logger,
		config:    config,
		db:        db,
		settings:  settings,
		resolver:  access.NewResolver(settings),
		prefixes:  access.NewPrefixResolver(db, config.DefaultPrefixes, logger.Named("prefixes")),
		store:     store,
		quotes:    quotes.NewClient(),
		commands:  make(map[string]*Command),
		reminders: make(map[int64]*time.Timer),
		stop:      make(chan struct{}),
		startTime: time.Now(),
	}
	return b, nil
}

func (b *Bot) Run() error {
	b.settings.Open()
	b.prefixes.Open()
	b.registerCommands()
	b.addHandlers()

	if err := b.client.Open(); err != nil {
		return err
	}

	if err := b.rescheduleReminders(); err != nil {
		b.logger.Error("failed to reschedule reminders", zap.Error(err))
	}
	go b.quoteSubLoop()

	return nil
}

func (b *Bot) Close() {
	b.logger.Info("shutting down")
	b.stopOnce.Do(func() { close(b.stop) })
	b.cancelAllReminders()
	b.settings.Close()
	b.prefixes.Close()
	if err := b.store.Close(); err != nil {
		b.logger.Error("failed to close kvstore", zap.Error(err))
	}
	if err := b.client.Close(); err != nil {
		b.logger.Error("failed to close discord client", zap.Error(err))
	}
}

func (b *Bot) addHandlers() {
	b.client.AddHandler(b.readyHandler)
	b.client.AddHandler(b.disconnectHandler)
	b.client.AddHandler(b.guildCreateHandler)
	b.client.AddHandler(b.guildDeleteHandler)
	b.client.AddHandler(b.messageCreateHandler)
	b.client.AddHandler(b.messageDeleteHandler)
}
