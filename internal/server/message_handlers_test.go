package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"whisper/internal/models"
	"whisper/internal/repository"
	"whisper/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Message{},
		&models.Friendship{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func newTestServer(db *gorm.DB) *Server {
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	return &Server{
		db:             db,
		userRepo:       userRepo,
		accountRepo:    accountRepo,
		messageRepo:    messageRepo,
		friendRepo:     friendRepo,
		messageService: service.NewMessageService(db, messageRepo, accountRepo),
		friendService:  service.NewFriendService(db, friendRepo, userRepo),
		modService:     service.NewModerationService(accountRepo, messageRepo, userRepo),
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string, coins int64, admin bool) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		IsAdmin:  admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&models.Account{UserID: user.ID, Coins: coins}).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return user
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func TestSendMessage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	broke := seedUser(t, db, "broke", 5, false)

	current := sender.ID
	app.Post("/messages/send", func(c *fiber.Ctx) error {
		c.Locals("userID", current)
		return s.SendMessage(c)
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/messages/send",
			jsonBody(t, fiber.Map{"text": "hello out there"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		if body["text"] != "hello out there" {
			t.Errorf("unexpected text: %v", body["text"])
		}
		if _, leaked := body["sender"]; leaked {
			t.Error("sender identity must not be in the response")
		}

		var account models.Account
		db.Where("user_id = ?", sender.ID).First(&account)
		if account.Coins != 90 {
			t.Errorf("expected 90 coins, got %d", account.Coins)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		current = broke.ID
		req := httptest.NewRequest(http.MethodPost, "/messages/send",
			jsonBody(t, fiber.Map{"text": "hello"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusPaymentRequired {
			t.Errorf("expected 402, got %d", resp.StatusCode)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		current = sender.ID
		req := httptest.NewRequest(http.MethodPost, "/messages/send",
			jsonBody(t, fiber.Map{"text": ""}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestReceiveMessage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	receiver := seedUser(t, db, "bob", 100, false)

	app.Post("/messages/receive", func(c *fiber.Ctx) error {
		c.Locals("userID", receiver.ID)
		return s.ReceiveMessage(c)
	})

	t.Run("empty pool", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/messages/receive", nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		if body["detail"] != "No new messages available." {
			t.Errorf("unexpected detail: %v", body["detail"])
		}
	})

	t.Run("claims a message", func(t *testing.T) {
		db.Create(&models.Message{SenderID: sender.ID, Text: "surprise"})

		req := httptest.NewRequest(http.MethodPost, "/messages/receive", nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		if body["text"] != "surprise" {
			t.Errorf("unexpected text: %v", body["text"])
		}

		var msg models.Message
		db.First(&msg)
		if msg.ReceiverID == nil || *msg.ReceiverID != receiver.ID {
			t.Error("message was not claimed for the receiver")
		}
	})
}

func TestRevealSender(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	receiver := seedUser(t, db, "bob", 100, false)
	intruder := seedUser(t, db, "mallory", 100, false)

	msg := models.Message{SenderID: sender.ID, ReceiverID: &receiver.ID, Text: "who am i"}
	db.Create(&msg)

	current := receiver.ID
	app.Post("/messages/:id/reveal", func(c *fiber.Ctx) error {
		c.Locals("userID", current)
		return s.RevealSender(c)
	})

	t.Run("forbidden for non-receiver", func(t *testing.T) {
		current = intruder.ID
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/messages/%d/reveal", msg.ID), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("success", func(t *testing.T) {
		current = receiver.ID
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/messages/%d/reveal", msg.ID), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		sender, _ := body["sender"].(map[string]any)
		if sender == nil || sender["username"] != "alice" {
			t.Errorf("expected revealed sender alice, got %v", body["sender"])
		}
	})

	t.Run("already revealed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/messages/%d/reveal", msg.ID), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/messages/abc/reveal", nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestReplyToMessage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	receiver := seedUser(t, db, "bob", 100, false)

	msg := models.Message{SenderID: sender.ID, ReceiverID: &receiver.ID, Text: "say something"}
	db.Create(&msg)

	app.Post("/messages/:id/reply", func(c *fiber.Ctx) error {
		c.Locals("userID", receiver.ID)
		return s.ReplyToMessage(c)
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/messages/%d/reply", msg.ID),
			jsonBody(t, fiber.Map{"reply_text": "something"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var fresh models.Message
		db.First(&fresh, msg.ID)
		if fresh.ReplyText == nil || *fresh.ReplyText != "something" {
			t.Error("reply was not stored")
		}
	})

	t.Run("second reply rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/messages/%d/reply", msg.ID),
			jsonBody(t, fiber.Map{"reply_text": "again"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})
}

func TestDeleteMessage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	receiver := seedUser(t, db, "bob", 100, false)

	msg := models.Message{SenderID: sender.ID, ReceiverID: &receiver.ID, Text: "junk"}
	db.Create(&msg)

	app.Delete("/messages/:id", func(c *fiber.Ctx) error {
		c.Locals("userID", receiver.ID)
		return s.DeleteMessage(c)
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/messages/%d", msg.ID), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("expected 204, got %d", resp.StatusCode)
		}
	})

	t.Run("gone after delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/messages/%d", msg.ID), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestGetMyMessages(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	s := newTestServer(db)
	app := fiber.New()

	sender := seedUser(t, db, "alice", 100, false)
	receiver := seedUser(t, db, "bob", 100, false)

	hidden := models.Message{SenderID: sender.ID, ReceiverID: &receiver.ID, Text: "anon"}
	db.Create(&hidden)
	shown := models.Message{SenderID: sender.ID, ReceiverID: &receiver.ID, Text: "known", IsSenderRevealed: true}
	db.Create(&shown)

	app.Get("/messages/mine", func(c *fiber.Ctx) error {
		c.Locals("userID", receiver.ID)
		return s.GetMyMessages(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/messages/mine", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body []map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(body))
	}

	// Sender identity appears only on revealed messages.
	for _, m := range body {
		_, hasSender := m["sender"]
		if m["text"] == "anon" && hasSender {
			t.Error("unrevealed message leaked the sender")
		}
		if m["text"] == "known" && !hasSender {
			t.Error("revealed message is missing the sender")
		}
	}
}
