package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"

	"github.com/wheelercj/parhelion"
	"github.com/wheelercj/parhelion/database"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	d, err := os.ReadFile("./config.json")
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var config *parhelion.Config
	if err := json.Unmarshal(d, &config); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	if config.Token == "" {
		log.Fatal("config is missing a token")
	}

	logger := parhelion.NewLogger("parhelion")

	var db database.DB
	if config.ConnectionString != "" {
		db, err = database.NewPSQLDatabase(&database.Config{
			Log:     logger.Named("db"),
			ConnStr: config.ConnectionString,
		})
	} else {
		path := config.DataPath
		if path == "" {
			path = "./data.json"
		}
		db, err = database.NewJsonDatabase(path)
	}
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	bot, err := parhelion.NewBot(config, db, logger.Named("bot"))
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}
	if err := bot.Run(); err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}
	defer bot.Close()

	// block until ctrl-c
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
}
