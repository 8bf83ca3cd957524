package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/adapter/handler"
)

// Hammers RemoveStock on one product over gRPC and checks that exactly
// initialStock removals succeed.
func main() {
	addr := flag.String("addr", "localhost:50051", "catalog gRPC address")
	initialStock := flag.Int("stock", 20, "initial stock of the test product")
	totalRequests := flag.Int("requests", 50, "concurrent RemoveStock calls")
	flag.Parse()

	ctx := context.Background()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()
	client := handler.NewCatalogClient(conn)

	product, err := client.CreateProduct(ctx, &handler.CreateProductRequest{
		RequestID:     uuid.NewString(),
		Name:          "stress-" + uuid.NewString()[:8],
		Price:         decimal.RequireFromString("1.00"),
		Currency:      "USD",
		StockQuantity: *initialStock,
	})
	if err != nil {
		log.Fatalf("failed to create product: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var retryCount atomic.Int32
	var errorCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				_, err := client.RemoveStock(ctx, &handler.StockRequest{ID: product.ID, Quantity: 1})
				switch status.Code(err) {
				case codes.OK:
					successCount.Add(1)
				case codes.Aborted:
					// lost the optimistic lock
					retryCount.Add(1)
					continue
				case codes.FailedPrecondition:
					soldOutCount.Add(1)
				default:
					errorCount.Add(1)
					log.Printf("unexpected error: %v", err)
				}
				return
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Out of stock:     %d\n", soldOut)
	fmt.Printf("Lock retries:     %d\n", retryCount.Load())
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	expectedSuccess := min(*initialStock, *totalRequests)
	if success == int32(expectedSuccess) && soldOut == int32(*totalRequests-expectedSuccess) {
		fmt.Printf("PASS: Exactly %d removals succeeded, %d rejected\n", success, soldOut)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			expectedSuccess, *totalRequests-expectedSuccess, success, soldOut)
	}

	final, err := client.GetProduct(ctx, &handler.ProductIDRequest{ID: product.ID})
	if err != nil {
		log.Fatalf("failed to read product: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", final.StockQuantity)

	if final.StockQuantity == *initialStock-expectedSuccess {
		fmt.Println("PASS: Stock matches successful removals")
	} else {
		fmt.Printf("FAIL: Expected stock %d, got %d\n", *initialStock-expectedSuccess, final.StockQuantity)
	}
}
