package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// postPayload is the body accepted by POST /create-post
type postPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var words = []string{"go", "mongo", "blog", "dashboard", "post", "latency", "index", "cursor", "shard", "replica"}

func randomSentence(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rand.Intn(len(words))]
	}
	return strings.Join(parts, " ")
}

// createPost sends a POST request and returns the created post id
func createPost(client *http.Client, baseURL string, p postPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal post: %w", err)
	}

	resp, err := client.Post(baseURL+"/create-post", "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return created.ID, nil
}

func countPosts(client *http.Client, baseURL string) (int, error) {
	resp, err := client.Get(baseURL + "/all-posts")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var posts []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return 0, err
	}
	return len(posts), nil
}

func main() {
	numPosts := flag.Int("n", 1000, "Number of posts to create")
	workers := flag.Int("workers", 8, "Concurrent clients")
	serverURL := flag.String("url", "http://localhost:3003", "Blog server base URL")
	flag.Parse()

	if *numPosts <= 0 || *workers <= 0 {
		fmt.Println("Error: -n and -workers must be greater than 0")
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	before, err := countPosts(client, *serverURL)
	if err != nil {
		fmt.Printf("Error: could not list posts on %s: %v\n", *serverURL, err)
		os.Exit(1)
	}

	fmt.Printf("Starting load test: creating %d posts on %s with %d workers\n", *numPosts, *serverURL, *workers)

	startTime := time.Now()
	var successCount, errorCount int64
	var ids sync.Map

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id, err := createPost(client, *serverURL, postPayload{
					Title: fmt.Sprintf("Load post %d", i),
					Body:  randomSentence(20),
				})
				if err != nil {
					atomic.AddInt64(&errorCount, 1)
					fmt.Printf("Error creating post %d: %v\n", i, err)
					continue
				}
				if _, dup := ids.LoadOrStore(id, i); dup {
					fmt.Printf("Error: duplicate id %s returned for post %d\n", id, i)
					atomic.AddInt64(&errorCount, 1)
					continue
				}
				atomic.AddInt64(&successCount, 1)
			}
		}()
	}

	reportInterval := max(1, *numPosts/10)
	for i := 0; i < *numPosts; i++ {
		jobs <- i
		if (i+1)%reportInterval == 0 {
			elapsed := time.Since(startTime)
			fmt.Printf("Progress: %d/%d posts queued - Rate: %.1f posts/sec\n",
				i+1, *numPosts, float64(i+1)/elapsed.Seconds())
		}
	}
	close(jobs)
	wg.Wait()

	totalTime := time.Since(startTime)
	after, err := countPosts(client, *serverURL)
	if err != nil {
		fmt.Printf("Error: could not list posts after load: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Posts attempted:       %d\n", *numPosts)
	fmt.Printf("Successful creates:    %d\n", successCount)
	fmt.Printf("Failed creates:        %d\n", errorCount)
	fmt.Printf("Posts listed:          %d (was %d)\n", after, before)
	fmt.Printf("Total time:            %v\n", totalTime)
	fmt.Printf("Average rate:          %.2f posts/sec\n", float64(*numPosts)/totalTime.Seconds())

	if errorCount > 0 || after-before != int(successCount) {
		fmt.Printf("\nWarning: %d errors, listed delta %d\n", errorCount, after-before)
		os.Exit(1)
	}

	fmt.Println("\nLoad test completed successfully!")
}
