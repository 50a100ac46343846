package service

import "github.com/piyushzingade/exchange/api"

// marketStats keeps rolling per-market figures for ticker broadcasts.
// A production system would window these by time; here they run for
// the session, matching the rest of the in-memory core.
type marketStats struct {
	LastPrice   float64
	High        float64
	Low         float64
	Volume      float64
	QuoteVolume float64
	OpenPrice   float64
}

func (s *marketStats) record(price, quantity float64) {
	s.LastPrice = price
	if s.High == 0 || price > s.High {
		s.High = price
	}
	if s.Low == 0 || price < s.Low {
		s.Low = price
	}
	s.Volume += quantity
	s.QuoteVolume += quantity * price
	if s.OpenPrice == 0 {
		s.OpenPrice = price
	}
}

func (s *marketStats) ticker(market string) api.TickerUpdated {
	return api.TickerUpdated{
		Market:      market,
		LastPrice:   s.LastPrice,
		High:        s.High,
		Low:         s.Low,
		Volume:      s.Volume,
		QuoteVolume: s.QuoteVolume,
		OpenPrice:   s.OpenPrice,
	}
}
