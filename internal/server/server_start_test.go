package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/go-hindi-bpe/internal/config"
	"github.com/example/go-hindi-bpe/internal/model"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // free it for the server
	return addr
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStart_LoadsVocabularyServesAndShutsDown(t *testing.T) {
	vocabPath := filepath.Join(t.TempDir(), "vocab.json")
	if err := tokenizer.New(tokenizer.Options{Logger: quiet()}).Save(vocabPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	addr := freeAddr(t)
	cfg := config.DefaultConfig()
	cfg.Paths.VocabPath = vocabPath
	cfg.Server.ListenAddr = addr

	s := New(cfg, nil).WithShutdownTimeout(2 * time.Second).WithLogger(quiet())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx)
	}()

	// Wait for the server to be ready.
	var err error
	for i := 0; i < 50; i++ {
		if err = ProbeHTTP(addr); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never became ready: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post(fmt.Sprintf("http://%s/encode", addr), "application/json", strings.NewReader(`{"text":"है"}`))
	if err != nil {
		t.Fatalf("POST /encode: %v", err)
	}
	defer resp.Body.Close()

	var body encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode /encode: %v", err)
	}
	if len(body.IDs) != 1 || body.Tokens[0] != "है" {
		t.Errorf("encode(है) = %+v, want a single whole-word token", body)
	}

	// Graceful shutdown.
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5s of context cancel")
	}
}

func TestStart_MissingVocabulary(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.VocabPath = filepath.Join(t.TempDir(), "absent.json")
	cfg.Server.ListenAddr = freeAddr(t)

	err := New(cfg, nil).WithLogger(quiet()).Start(context.Background())
	if !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("want ErrArtifactNotFound, got %v", err)
	}
}

func TestStart_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = ln.Addr().String()

	tok := tokenizer.New(tokenizer.Options{Logger: quiet()})
	err = New(cfg, tok).WithLogger(quiet()).Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http listen") {
		t.Fatalf("want http listen error, got %v", err)
	}
}

func TestNew_ShutdownTimeoutFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ShutdownTimeout = 7
	if got := New(cfg, nil).shutdownTimeout; got != 7*time.Second {
		t.Errorf("shutdownTimeout = %v, want 7s", got)
	}

	cfg.Server.ShutdownTimeout = 0
	if got := New(cfg, nil).shutdownTimeout; got != 30*time.Second {
		t.Errorf("shutdownTimeout = %v, want 30s default", got)
	}
}
