package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// 對運行中的服務灌入壓測流量，量測 TPS
func main() {
	var (
		baseURL       = flag.String("base-url", "http://localhost:8080", "service base url")
		accountNumber = flag.String("account", "", "target account number (required)")
		totalCount    = flag.Int("n", 100000, "total requests")
		concurrency   = flag.Int("c", 100, "concurrent workers")
	)
	flag.Parse()

	if *accountNumber == "" {
		log.Fatal("missing -account")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	url := *baseURL + "/api/v1/accounts/credit"

	body, _ := json.Marshal(map[string]any{
		"account_number": *accountNumber,
		"amount":         "1.00",
	})

	var wg sync.WaitGroup
	wg.Add(*totalCount)

	sem := make(chan struct{}, *concurrency)

	startTime := time.Now()

	for i := 0; i < *totalCount; i++ {
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := client.Post(url, "application/json", bytes.NewReader(body))
			if err != nil {
				if idx%10000 == 0 {
					log.Printf("credit %d failed: %v", idx, err)
				}
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK && idx%10000 == 0 {
				log.Printf("credit %d status: %d", idx, resp.StatusCode)
			}
		}(i)
	}

	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("Completed %d requests in %v\n", *totalCount, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*totalCount)/elapsed.Seconds())
}
