//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the borrow endpoint.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <item_id> <user1_id> [user2_id ...]
//
// Or use the convenience environment variables:
//
//	ITEM_ID=<id>  USER_IDS=<id1>,<id2>,...  go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Fires N goroutines (one per user) all attempting to borrow the same item simultaneously.
//  2. Prints how many succeeded vs. were rejected with "Item not available".
//  3. Re-reads the item and checks the amount invariant: successes must equal
//     the drop in available units, and the amount must never be negative.
//
// Prerequisites:
//   - Server must be running with DATABASE_URL set.
//   - The item and the users must exist in the DB.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type borrowResult struct {
	UserID     string
	Message    string
	StatusCode int
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	itemID := os.Getenv("ITEM_ID")
	userIDsEnv := os.Getenv("USER_IDS")

	var userIDs []string
	if userIDsEnv != "" {
		userIDs = strings.Split(userIDsEnv, ",")
	}

	// Support positional args: script <item_id> [user_ids...]
	args := os.Args[1:]
	if len(args) >= 1 {
		itemID = args[0]
	}
	if len(args) >= 2 {
		userIDs = args[1:]
	}

	if itemID == "" {
		log.Fatal("Usage: ITEM_ID=<id> USER_IDS=<u1,u2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <item_id> <user1_id> [user2_id ...]")
	}
	if len(userIDs) == 0 {
		log.Fatal("At least one user ID must be provided via USER_IDS env or positional args")
	}

	before, err := fetchAmount(serverAddr, itemID)
	if err != nil {
		log.Fatalf("failed to read item %s before test: %v", itemID, err)
	}

	fmt.Printf("=== Borrow Concurrency Test ===\n")
	fmt.Printf("Server : %s\n", serverAddr)
	fmt.Printf("Item   : %s (amount=%d)\n", itemID, before)
	fmt.Printf("Users  : %d\n\n", len(userIDs))

	results := make([]borrowResult, len(userIDs))
	var wg sync.WaitGroup

	// Fire all goroutines simultaneously using a barrier.
	start := make(chan struct{})

	for i, uid := range userIDs {
		wg.Add(1)
		go func(idx int, userID string) {
			defer wg.Done()
			<-start // wait for the barrier
			results[idx] = attemptBorrow(serverAddr, itemID, strings.TrimSpace(userID))
		}(i, uid)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)

	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var borrowed, rejected, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] user=%-6s err=%v\n", r.UserID, r.Err)
		case r.StatusCode == http.StatusOK:
			borrowed++
			fmt.Printf("  [BRRW] user=%-6s status=%d\n", r.UserID, r.StatusCode)
		case r.Message == "Item not available":
			rejected++
			fmt.Printf("  [FULL] user=%-6s status=%d\n", r.UserID, r.StatusCode)
		default:
			failures++
			fmt.Printf("  [FAIL] user=%-6s status=%d message=%q\n", r.UserID, r.StatusCode, r.Message)
		}
	}

	after, err := fetchAmount(serverAddr, itemID)
	if err != nil {
		log.Fatalf("failed to read item %s after test: %v", itemID, err)
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Borrowed : %d\n", borrowed)
	fmt.Printf("Rejected : %d\n", rejected)
	fmt.Printf("Failures : %d\n", failures)
	fmt.Printf("Amount   : %d -> %d\n\n", before, after)

	fmt.Println("--- Invariant Check ---")
	if after < 0 {
		fmt.Println("[VIOLATION] item amount went negative")
		os.Exit(1)
	}
	if before-after != borrowed {
		fmt.Printf("[VIOLATION] %d successful borrows but amount dropped by %d\n", borrowed, before-after)
		os.Exit(1)
	}
	fmt.Println("OK: successful borrows match the drop in available units; amount never negative.")

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed — check server logs for details.\n", failures)
		os.Exit(1)
	}
}

// attemptBorrow sends POST /borrow for the given user/item pair and parses the
// response message.
func attemptBorrow(serverAddr, itemID, userID string) borrowResult {
	body := fmt.Sprintf(`{"user_id":%s,"item_id":%s}`, userID, itemID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(serverAddr+"/borrow", "application/json", bytes.NewBufferString(body))
	if err != nil {
		return borrowResult{UserID: userID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return borrowResult{UserID: userID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %s", raw)}
	}
	return borrowResult{UserID: userID, Message: parsed.Message, StatusCode: resp.StatusCode}
}

// fetchAmount reads the item's current available amount.
func fetchAmount(serverAddr, itemID string) (int, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverAddr + "/items/" + itemID)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	var item struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return 0, err
	}
	return item.Amount, nil
}
