package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fundlane/fundlane/pkg/signature"
	"github.com/google/uuid"
)

var URL, _ = os.LookupEnv("API_URL")
var PORT, _ = os.LookupEnv("API_PORT")
var TOKEN, _ = os.LookupEnv("API_TOKEN")
var SECRET, _ = os.LookupEnv("PAYMENT_PROVIDER_SECRET")
var CAMPAIGN, _ = os.LookupEnv("CAMPAIGN_ID")

var apiURL = fmt.Sprintf("http://%s:%s/api/v1", URL, PORT)
var ordersURL = apiURL + "/payments/orders"
var verifyURL = apiURL + "/payments/verify"

const (
	workers  = 10
	duration = 30 * time.Second
)

type orderRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CampaignID  string `json:"campaignId"`
	FundingType string `json:"fundingType"`
}

type orderResponse struct {
	OrderID string `json:"orderId"`
}

type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func main() {
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			start := time.Now()
			for time.Since(start) < duration {
				if err := contribute(); err != nil {
					fmt.Println("Error:", err)
				}
				time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)
			}
		}()
	}
	wg.Wait()
	printTotals()
}

// contribute creates an order and settles it. Some callbacks are replayed
// and some carry a bad signature to exercise the rejection paths.
func contribute() error {
	order, err := createOrder()
	if err != nil {
		return err
	}

	paymentID := "pay_" + uuid.New().String()
	sig := signature.Compute(order.OrderID, paymentID, SECRET)
	if rand.Float64() < 0.05 {
		sig = signature.Compute(order.OrderID, "pay_forged", SECRET)
	}

	status, err := verify(order.OrderID, paymentID, sig)
	if err != nil {
		return err
	}
	fmt.Printf("Settled %s with status %d\n", order.OrderID, status)

	if rand.Float64() < 0.2 {
		status, err = verify(order.OrderID, paymentID, sig)
		if err != nil {
			return err
		}
		fmt.Printf("Replayed %s with status %d\n", order.OrderID, status)
	}
	return nil
}

func createOrder() (*orderResponse, error) {
	amount := int64(rand.Intn(100000) + 1000)
	body, err := json.Marshal(orderRequest{
		Amount:      amount,
		Currency:    "INR",
		CampaignID:  CAMPAIGN,
		FundingType: "donation",
	})
	if err != nil {
		return nil, err
	}

	resp, err := post(ordersURL, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("wrong status code creating order: %d", resp.StatusCode)
	}

	var order orderResponse
	if err = json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func verify(orderID, paymentID, sig string) (int, error) {
	body, err := json.Marshal(verifyRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: sig,
	})
	if err != nil {
		return 0, err
	}

	resp, err := post(verifyURL, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func post(url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+TOKEN)
	return http.DefaultClient.Do(req)
}

func printTotals() {
	resp, err := http.Get(fmt.Sprintf("%s/campaigns/%s/transactions", apiURL, CAMPAIGN))
	if err != nil {
		fmt.Println("Error fetching campaign totals:", err)
		return
	}
	defer resp.Body.Close()

	var totals interface{}
	if err = json.NewDecoder(resp.Body).Decode(&totals); err != nil {
		fmt.Println("Error decoding campaign totals:", err)
		return
	}
	fmt.Printf("Campaign totals: %v\n", totals)
}
