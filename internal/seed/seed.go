// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"whisper/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumMessages int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new Seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{"friendships", "messages", "accounts", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds users, accounts, a pool of undelivered messages, and some
// friendships so every flow has data behind it out of the box.
func (s *Seeder) Run(opts Options) error {
	if opts.NumUsers < 2 {
		opts.NumUsers = 2
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}

	if err := s.seedMessages(users, opts.NumMessages); err != nil {
		return err
	}

	if err := s.seedFriendships(users); err != nil {
		return err
	}

	log.Printf("Seeded %d users and %d messages", len(users), opts.NumMessages)
	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	// One well-known password for every demo account.
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!demo123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing demo password: %w", err)
	}

	users := make([]models.User, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		if _, dup := seen[username]; dup {
			username = fmt.Sprintf("%s%d", username, i)
		}
		seen[username] = struct{}{}

		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: string(hash),
			IsAdmin:  i == 0,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("creating user %s: %w", username, err)
		}

		account := models.Account{
			UserID: user.ID,
			Coins:  models.DefaultStartingCoins + int64(rand.Intn(5))*10,
		}
		if err := s.db.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("creating account for %s: %w", username, err)
		}

		users = append(users, user)
	}

	log.Printf("Created %d users (admin: %s)", len(users), users[0].Username)
	return users, nil
}

func (s *Seeder) seedMessages(users []models.User, n int) error {
	for i := 0; i < n; i++ {
		sender := users[rand.Intn(len(users))]
		msg := models.Message{
			SenderID: sender.ID,
			Text:     gofakeit.HipsterSentence(8 + rand.Intn(12)),
		}

		// Most messages stay in the pool, some get delivered.
		if rand.Float64() < 0.3 {
			receiver := users[rand.Intn(len(users))]
			if receiver.ID != sender.ID {
				msg.ReceiverID = &receiver.ID
			}
		}

		if err := s.db.Create(&msg).Error; err != nil {
			return fmt.Errorf("creating message: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedFriendships(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	count := len(users) / 2
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		friend := users[rand.Intn(len(users))]
		if owner.ID == friend.ID {
			continue
		}

		edge := models.Friendship{OwnerID: owner.ID, FriendID: friend.ID}
		// Duplicate pairs are fine to skip.
		if err := s.db.Create(&edge).Error; err != nil {
			continue
		}
	}
	return nil
}
