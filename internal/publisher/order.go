package publisher

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/TemirB/order-lookup/internal/domain"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[r.IntN(len(alphanumeric))]
	}
	return string(b)
}

func between(r *rand.Rand, lo, hi int) int { return lo + r.IntN(hi-lo) }

// IDs returns n order identifiers: "1".."n" when sequential, random UUIDs
// otherwise.
func IDs(n int, sequential bool) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if sequential {
			ids = append(ids, strconv.Itoa(i))
			continue
		}
		ids = append(ids, uuid.NewString())
	}
	return ids
}

// MockOrder builds a plausible order with random field values.
func MockOrder(r *rand.Rand, uid string, now time.Time) domain.Order {
	track := randomString(r, 12)
	return domain.Order{
		OrderUID:    uid,
		TrackNumber: track,
		Entry:       "WBIL",
		Delivery: domain.Delivery{
			Name:    "Test Testov",
			Phone:   fmt.Sprintf("+972%d", between(r, 10000000, 99999999)),
			Zip:     strconv.Itoa(between(r, 1000000, 9999999)),
			City:    "Kiryat Mozkin",
			Address: "Ploshad Mira 15",
			Region:  "Kraiot",
			Email:   fmt.Sprintf("test%d@gmail.com", between(r, 1, 100)),
		},
		Payment: domain.Payment{
			Transaction:  uid,
			Currency:     "USD",
			Provider:     "wbpay",
			Amount:       between(r, 1000, 5000),
			PaymentDT:    now.Unix(),
			Bank:         "alpha",
			DeliveryCost: between(r, 100, 500),
			GoodsTotal:   between(r, 500, 2000),
		},
		Items: []domain.Item{{
			ChrtID:      between(r, 1000000, 9999999),
			TrackNumber: track,
			Price:       between(r, 100, 500),
			RID:         randomString(r, 16),
			Name:        "Random Item",
			Sale:        between(r, 0, 50),
			Size:        "L",
			TotalPrice:  between(r, 100, 500),
			NmID:        between(r, 1000000, 9999999),
			Brand:       "Random Brand",
			Status:      202,
		}},
		Locale:          "en",
		CustomerID:      "random_customer",
		DeliveryService: "meest",
		ShardKey:        strconv.Itoa(between(r, 1, 10)),
		SmID:            between(r, 1, 100),
		DateCreated:     now.UTC(),
		OofShard:        strconv.Itoa(between(r, 1, 10)),
	}
}
