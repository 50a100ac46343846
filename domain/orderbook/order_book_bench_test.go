package orderbook

import (
	"strconv"
	"testing"
)

func BenchmarkAddOrderResting(b *testing.B) {
	book := NewOrderBook("TATA", "INR")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := Buy
		price := 100 - float64(i%50)
		if i%2 == 0 {
			side = Sell
			price = 101 + float64(i%50)
		}
		book.AddOrder(newOrder(strconv.Itoa(i), "u1", side, price, 1))
	}
}

func BenchmarkMatchCrossingFlow(b *testing.B) {
	book := NewOrderBook("TATA", "INR")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := strconv.Itoa(i)
		if i%2 == 0 {
			book.AddOrder(newOrder("a"+id, "u1", Sell, 100, 1))
		} else {
			book.AddOrder(newOrder("b"+id, "u2", Buy, 100, 1))
		}
	}
}

func BenchmarkGetDepth(b *testing.B) {
	book := NewOrderBook("TATA", "INR")
	for i := 0; i < 1000; i++ {
		book.AddOrder(newOrder(strconv.Itoa(i), "u1", Buy, float64(1+i%100), 1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.GetDepth()
	}
}
