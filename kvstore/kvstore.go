package kvstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgraph-io/badger/options"

	"github.com/bwmarrin/discordgo"
	"github.com/dgraph-io/badger"

	"github.com/wheelercj/parhelion/quotes"
)

// Store is a badger-backed cache for short-lived data: recent messages so
// that deletions can be sniped, and the quote of the day.
type Store struct {
	db  *badger.DB
	log *zap.Logger

	stop chan struct{}
	once sync.Once
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{
		log:  log,
		stop: make(chan struct{}),
	}

	opts := badger.DefaultOptions(dir)
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	db, err := badger.Open(opts)
	if err != nil {
		s.log.Error("failed to open kvstore", zap.Error(err))
		return nil, err
	}
	s.db = db

	go s.runGC()

	return s, nil
}

func (s *Store) runGC() {
	gcTimer := time.NewTicker(time.Hour)
	defer gcTimer.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-gcTimer.C:
			err := s.db.RunValueLogGC(0.5)
			if err != nil && err != badger.ErrNoRewrite {
				s.log.Error("failed to run gc", zap.Error(err))
			}
		}
	}
}

func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	return s.db.Close()
}

func (s *Store) SetMessage(msg *discordgo.Message) error {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(msg)
	if err != nil {
		s.log.Error("failed to encode message", zap.Error(err))
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       []byte(fmt.Sprintf("message:%v:%v", msg.ChannelID, msg.ID)),
			Value:     buf.Bytes(),
			ExpiresAt: uint64(time.Now().Add(time.Hour * 24).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetMessage(cid, mid string) (*discordgo.Message, error) {
	return s.getMessage(fmt.Sprintf("message:%v:%v", cid, mid))
}

// SetSniped remembers a just-deleted message for its channel, for 20
// minutes.
func (s *Store) SetSniped(msg *discordgo.Message) error {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(msg)
	if err != nil {
		s.log.Error("failed to encode message", zap.Error(err))
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       []byte(fmt.Sprintf("sniped:%v", msg.ChannelID)),
			Value:     buf.Bytes(),
			ExpiresAt: uint64(time.Now().Add(time.Minute * 20).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetSniped(cid string) (*discordgo.Message, error) {
	return s.getMessage(fmt.Sprintf("sniped:%v", cid))
}

func (s *Store) getMessage(key string) (*discordgo.Message, error) {
	var body []byte
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	}); err != nil {
		return nil, err
	}

	msg := &discordgo.Message{}
	err := gob.NewDecoder(bytes.NewReader(body)).Decode(msg)
	if err != nil {
		s.log.Error("failed to decode message", zap.Error(err))
		return nil, err
	}
	return msg, nil
}

// SetQuoteOfDay caches today's quote until the next UTC midnight.
func (s *Store) SetQuoteOfDay(q *quotes.Quote) error {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(q)
	if err != nil {
		s.log.Error("failed to encode quote", zap.Error(err))
		return err
	}

	now := time.Now().UTC()
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       []byte("quote:today"),
			Value:     buf.Bytes(),
			ExpiresAt: uint64(midnight.Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetQuoteOfDay() (*quotes.Quote, error) {
	var body []byte
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("quote:today"))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	}); err != nil {
		return nil, err
	}

	q := &quotes.Quote{}
	err := gob.NewDecoder(bytes.NewReader(body)).Decode(q)
	if err != nil {
		s.log.Error("failed to decode quote", zap.Error(err))
		return nil, err
	}
	return q, nil
}
