package store

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel-market-backend/internal/model"
)

// SyntheticCity seeds the generator with one market.
type SyntheticCity struct {
	Name  string `yaml:"name"`
	State string `yaml:"state"`
}

// DefaultSyntheticCities is a tourist-city seed list for running without a
// database.
var DefaultSyntheticCities = []SyntheticCity{
	{"Gramado", "RS"}, {"Canela", "RS"}, {"Florianópolis", "SC"},
	{"Bombinhas", "SC"}, {"Balneário Camboriú", "SC"}, {"Foz do Iguaçu", "PR"},
	{"Rio de Janeiro", "RJ"}, {"Búzios", "RJ"}, {"Paraty", "RJ"},
	{"São Paulo", "SP"}, {"Campos do Jordão", "SP"}, {"Ilhabela", "SP"},
	{"Ouro Preto", "MG"}, {"Tiradentes", "MG"}, {"Capitólio", "MG"},
	{"Salvador", "BA"}, {"Porto Seguro", "BA"}, {"Trancoso", "BA"},
	{"Fortaleza", "CE"}, {"Jericoacoara", "CE"}, {"Natal", "RN"},
	{"Pipa", "RN"}, {"Porto de Galinhas", "PE"}, {"Maragogi", "AL"},
	{"Bonito", "MS"}, {"Brasília", "DF"}, {"Manaus", "AM"},
}

var syntheticTypes = []model.ListingType{
	model.TypeHotel, model.TypePousada, model.TypeResort,
	model.TypeHostel, model.TypeChalet, model.TypeApartment,
}

// SyntheticSource is an in-memory Store seeded with generated listings.
// It replaces the original system's process-wide "store connected" switch:
// the data source is a capability chosen once at startup, not a runtime
// global.
type SyntheticSource struct {
	mu        sync.RWMutex
	listings  map[string]*model.Listing
	snapshots map[string][]model.MarketSnapshot
	subs      map[string]*model.AlertSubscription
	subCities map[string][]string
}

// NewSyntheticSource builds a source with perCity generated listings for
// each seed city. The same seed reproduces the same market.
func NewSyntheticSource(seed int64, cities []SyntheticCity, perCity int, now time.Time) *SyntheticSource {
	s := &SyntheticSource{
		listings:  make(map[string]*model.Listing),
		snapshots: make(map[string][]model.MarketSnapshot),
		subs:      make(map[string]*model.AlertSubscription),
		subCities: make(map[string][]string),
	}

	rng := rand.New(rand.NewSource(seed))
	for _, city := range cities {
		for i := 0; i < perCity; i++ {
			l := generateListing(rng, city, i, now)
			s.listings[l.ID] = l
		}
	}
	return s
}

func generateListing(rng *rand.Rand, city SyntheticCity, seq int, now time.Time) *model.Listing {
	typ := syntheticTypes[rng.Intn(len(syntheticTypes))]
	basePrice := 80 + rng.Float64()*1100

	l := &model.Listing{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("%s %s %d", typeLabel(typ), city.Name, seq+1),
		Type:           typ,
		City:           city.Name,
		State:          city.State,
		SourcePlatform: "synthetic",
		ExternalID:     fmt.Sprintf("%s-%d", strings.ToLower(city.Name), seq),
		IsActive:       true,
		LastScrapedAt:  now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		Availability: model.Availability{
			IsAvailable: rng.Float64() < 0.7,
			LastChecked: now.Add(-time.Duration(rng.Intn(24)) * time.Hour),
		},
	}

	if rng.Float64() < 0.75 {
		l.Rating = &model.Rating{
			Score:        5 + rng.Float64()*5,
			TotalReviews: rng.Intn(500),
		}
	}

	// A handful of samples over the past quarter; the last one defines the
	// current price.
	samples := 3 + rng.Intn(7)
	price := basePrice
	for i := samples; i > 0; i-- {
		price *= 1 + (rng.Float64()-0.45)*0.1
		model.RecordPrice(l, model.PriceSample{
			Timestamp: now.AddDate(0, 0, -i*10),
			Price:     decimal.NewFromFloat(price).Round(2),
			Available: rng.Float64() < 0.7,
		}, now)
	}
	return l
}

func typeLabel(t model.ListingType) string {
	switch t {
	case model.TypeHotel:
		return "Hotel"
	case model.TypePousada:
		return "Pousada"
	case model.TypeResort:
		return "Resort"
	case model.TypeHostel:
		return "Hostel"
	case model.TypeChalet:
		return "Chalé"
	case model.TypeApartment:
		return "Apartamento"
	default:
		return "Hospedagem"
	}
}

func cityKey(city string) string { return strings.ToLower(city) }

// cloneListing returns a copy that shares no mutable memory with the stored
// listing. RecordPrice rewrites the history slice in place, so handing the
// stored slice header to a reader outside the lock would race with the next
// upsert.
func cloneListing(l *model.Listing) model.Listing {
	cp := *l
	if l.Rating != nil {
		r := *l.Rating
		cp.Rating = &r
	}
	if len(l.PriceHistory) > 0 {
		cp.PriceHistory = append([]model.PriceSample(nil), l.PriceHistory...)
	}
	return cp
}

func (s *SyntheticSource) UpsertListings(_ context.Context, now time.Time, items []ListingUpsert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		observed := item.ObservedAt
		if observed.IsZero() {
			observed = now
		}

		var existing *model.Listing
		for _, l := range s.listings {
			if l.SourcePlatform == item.SourcePlatform && l.ExternalID == item.ExternalID {
				existing = l
				break
			}
		}

		sample := model.PriceSample{
			Timestamp:     observed,
			Price:         item.Price,
			Available:     item.Available,
			OccupancyRate: item.OccupancyRate,
		}

		if existing == nil {
			l := &model.Listing{
				ID:             uuid.NewString(),
				Name:           item.Name,
				Type:           item.Type,
				City:           item.City,
				State:          item.State,
				CurrentPrice:   item.Price,
				Rating:         item.Rating,
				SourcePlatform: item.SourcePlatform,
				ExternalID:     item.ExternalID,
				IsActive:       true,
				LastScrapedAt:  observed,
				Availability: model.Availability{
					IsAvailable:   item.Available,
					LastChecked:   observed,
					OccupancyRate: item.OccupancyRate,
				},
			}
			model.RecordPrice(l, sample, now)
			s.listings[l.ID] = l
			continue
		}

		priceChanged := !existing.CurrentPrice.Equal(item.Price)
		existing.Name = item.Name
		existing.Type = item.Type
		existing.Rating = item.Rating
		existing.LastScrapedAt = observed
		existing.IsActive = true
		existing.Availability = model.Availability{
			IsAvailable:   item.Available,
			LastChecked:   observed,
			OccupancyRate: item.OccupancyRate,
		}
		if priceChanged {
			model.RecordPrice(existing, sample, now)
		}
	}
	return nil
}

func (s *SyntheticSource) ListListings(_ context.Context, filter ListingFilter) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Listing
	for _, l := range s.listings {
		if !l.IsActive || !matches(l, filter) {
			continue
		}
		out = append(out, cloneListing(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(l *model.Listing, f ListingFilter) bool {
	if f.City != "" && !strings.EqualFold(l.City, f.City) {
		return false
	}
	if f.State != "" && !strings.EqualFold(l.State, f.State) {
		return false
	}
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && l.CurrentPrice.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && l.CurrentPrice.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && (l.Rating == nil || l.Rating.Score < *f.MinRating) {
		return false
	}
	if f.AvailableOnly && !l.Availability.IsAvailable {
		return false
	}
	return true
}

func (s *SyntheticSource) FindListing(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneListing(l)
	return &cp, nil
}

func (s *SyntheticSource) FindActiveListingsByCity(_ context.Context, city string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Listing
	for _, l := range s.listings {
		if l.IsActive && strings.EqualFold(l.City, city) {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *SyntheticSource) DistinctActiveCities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var cities []string
	for _, l := range s.listings {
		if l.IsActive && !seen[cityKey(l.City)] {
			seen[cityKey(l.City)] = true
			cities = append(cities, l.City)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

func (s *SyntheticSource) FindLatestSnapshot(_ context.Context, city string) (*model.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.snapshots[cityKey(city)]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	latest := snaps[len(snaps)-1]
	return &latest, nil
}

func (s *SyntheticSource) ListSnapshots(_ context.Context, city string, limit int) ([]model.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.snapshots[cityKey(city)]
	var out []model.MarketSnapshot
	for i := len(snaps) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, snaps[i])
	}
	return out, nil
}

func (s *SyntheticSource) AppendSnapshot(_ context.Context, snap *model.MarketSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cityKey(snap.City)
	s.snapshots[key] = append(s.snapshots[key], *snap)
	return nil
}

func (s *SyntheticSource) SaveSubscription(_ context.Context, sub model.AlertSubscription, cities []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.Endpoint] = &sub
	s.subCities[sub.Endpoint] = append([]string(nil), cities...)
	return nil
}

func (s *SyntheticSource) GetSubscription(_ context.Context, endpoint string) (*model.AlertSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[endpoint]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sub
	cp.Cities = nil
	for _, c := range s.subCities[endpoint] {
		cp.Cities = append(cp.Cities, model.SubscriptionCity{Endpoint: endpoint, City: c})
	}
	return &cp, nil
}

func (s *SyntheticSource) DeleteSubscription(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	delete(s.subCities, endpoint)
	return nil
}

func (s *SyntheticSource) SubscribersForCity(_ context.Context, city string) ([]model.AlertSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AlertSubscription
	for endpoint, cities := range s.subCities {
		for _, c := range cities {
			if strings.EqualFold(c, city) {
				out = append(out, *s.subs[endpoint])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out, nil
}
