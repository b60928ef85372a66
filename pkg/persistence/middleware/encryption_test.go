package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/ikenthis/bmsagent/pkg/adapters/memory"
	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/persistence/middleware"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunContextStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)

	ctx := context.Background()
	conv := domain.NewConversationContext("desk-7")
	conv.ExecutionContext["badge"] = "A-1234"
	conv.Record(domain.ActionFindSpaces, conv.UpdatedAt)

	if err := secure.Save(ctx, "desk-7", conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlying.Load(ctx, "desk-7")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if _, ok := stored.ExecutionContext["badge"]; ok {
		t.Fatal("Expected badge to be hidden in the stored envelope")
	}
	if len(stored.History) != 0 {
		t.Fatalf("Expected history to be hidden, got %d entries", len(stored.History))
	}
	if _, ok := stored.ExecutionContext[middleware.EnvelopeKey]; !ok {
		t.Fatal("Expected envelope field in execution context")
	}

	loaded, err := secure.Load(ctx, "desk-7")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded.ExecutionContext["badge"] != "A-1234" {
		t.Errorf("Expected 'A-1234', got %v", loaded.ExecutionContext["badge"])
	}
	if len(loaded.History) != 1 || loaded.LastAction.Action != domain.ActionFindSpaces {
		t.Errorf("History not restored: %+v", loaded.History)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)

	ctx := context.Background()
	conv := domain.NewConversationContext("rotation")
	conv.ExecutionContext["data"] = "sealed-with-old-key"

	if err := secureOld.Save(ctx, "rotation", conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, "rotation")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded.ExecutionContext["data"] != "sealed-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	loaded.ExecutionContext["data"] = "sealed-with-new-key"
	if err := secureNew.Save(ctx, "rotation", loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err := secureOld.Load(ctx, "rotation"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainDocuments(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	if err := underlying.Save(ctx, "plain", domain.NewConversationContext("plain")); err != nil {
		t.Fatal(err)
	}

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	if _, err := secure.Load(ctx, "plain"); err == nil {
		t.Error("Expected plain document to be rejected")
	}
}

func TestEncryptionMiddleware_EnvelopeBoundToSession(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	if err := secure.Save(ctx, "desk-1", domain.NewConversationContext("desk-1")); err != nil {
		t.Fatal(err)
	}
	envelope, err := underlying.Load(ctx, "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := underlying.Save(ctx, "desk-2", envelope); err != nil {
		t.Fatal(err)
	}

	if _, err := secure.Load(ctx, "desk-2"); err == nil {
		t.Error("Expected an envelope copied to another session to be rejected")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if string(got) != string(key) {
		t.Error("ParseKey returned a different key")
	}

	if _, err := middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("Expected error for short key")
	}
	if _, err := middleware.ParseKey("%%%"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}
