package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/chat/v1"

// Simplified DTOs for the script
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type conversationData struct {
	ID string `json:"id"`
}

type messageData struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	VersionGroupID string `json:"version_group_id"`
	VersionNumber  int    `json:"version_number"`
	IsActive       bool   `json:"is_active"`
}

type sendData struct {
	Sent  messageData `json:"sent"`
	Reply messageData `json:"reply"`
}

type editData struct {
	Edited     messageData `json:"edited"`
	Reply      messageData `json:"reply"`
	ChangedIDs []string    `json:"changed_ids"`
}

type regenerateData struct {
	Reply      messageData `json:"reply"`
	ChangedIDs []string    `json:"changed_ids"`
}

type switchData struct {
	Target     messageData `json:"target"`
	ChangedIDs []string    `json:"changed_ids"`
}

type versionsData struct {
	Versions []messageData `json:"versions"`
}

type pathData struct {
	Messages []messageData `json:"messages"`
}

var accessToken = os.Getenv("SIMULATION_TOKEN")

func main() {
	header := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	header.Println("=== Branching Chat Simulation Client ===")
	if accessToken == "" {
		log.Fatal("SIMULATION_TOKEN is not set")
	}

	convID := createConversation("Branching walkthrough")
	ok.Printf("Conversation created: %s\n", convID)

	// 1. Normal turn
	var sent sendData
	call("POST", "/messages", map[string]any{
		"conversation_id": convID,
		"content":         "What does the uploaded contract say about termination?",
	}, &sent)
	ok.Printf("USER: %s\n", sent.Sent.Content)
	ok.Printf("ASSISTANT [v%d]: %.80s\n", sent.Reply.VersionNumber, sent.Reply.Content)

	// 2. Regenerate the reply (new version, same group)
	var regen regenerateData
	call("POST", "/messages/"+sent.Sent.ID+"/regenerate", nil, &regen)
	ok.Printf("Regenerated reply v%d in group %s (deactivated %d)\n",
		regen.Reply.VersionNumber, regen.Reply.VersionGroupID, len(regen.ChangedIDs))

	// 3. Edit the user turn (new version, fresh reply group)
	var edited editData
	call("PUT", "/messages/"+sent.Sent.ID, map[string]any{
		"content": "What does the uploaded contract say about the notice period?",
	}, &edited)
	ok.Printf("Edited to v%d; fresh reply group %s\n",
		edited.Edited.VersionNumber, edited.Reply.VersionGroupID)

	// 4. Switch the user turn back to the original version
	var switched switchData
	call("POST", "/messages/"+edited.Edited.ID+"/switch", map[string]any{
		"direction": "prev",
	}, &switched)
	ok.Printf("Switched to v%d (%d flags flipped)\n",
		switched.Target.VersionNumber, len(switched.ChangedIDs))

	// 5. Verify the active path follows the restored branch
	var path pathData
	call("GET", "/conversations/"+convID+"/messages", nil, &path)
	header.Println("\nActive path:")
	for _, m := range path.Messages {
		fmt.Printf("  [%s v%d] %.60s\n", m.Role, m.VersionNumber, m.Content)
	}

	var versions versionsData
	call("GET", "/messages/"+switched.Target.ID+"/versions", nil, &versions)
	if len(versions.Versions) != 2 {
		warn.Printf("Expected 2 versions of the user turn, got %d\n", len(versions.Versions))
	} else {
		ok.Println("\nVersion history intact: 2 versions of the user turn")
	}
}

func createConversation(title string) string {
	var conv conversationData
	call("POST", "/conversations", map[string]any{"title": title}, &conv)
	return conv.ID
}

func call(method, path string, body any, out any) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			log.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 60 * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%s %s returned %d: %s", method, path, resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			log.Fatalf("Failed to decode data: %v", err)
		}
	}
	fmt.Printf("  (%s %s took %s)\n", method, path, time.Since(start).Round(time.Millisecond))
}
