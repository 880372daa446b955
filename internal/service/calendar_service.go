package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"backend/internal/repository"
)

const defaultHolidayCountry = "PH"

// Holiday mirrors one entry of the Nager.Date public-holiday feed.
type Holiday struct {
	Date        string `json:"date"`
	LocalName   string `json:"localName"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Global      bool   `json:"global"`
}

// CalendarActivity is an approved proposal projected for calendar display.
type CalendarActivity struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	VenueName        string `json:"venue_name"`
	OrganizationName string `json:"organization_name"`
}

// CalendarService serves the two halves the client merges into one
// calendar: external public holidays and approved activities.
type CalendarService interface {
	Holidays(ctx context.Context, year int, countryCode string) ([]Holiday, error)
	ApprovedActivities(ctx context.Context) ([]CalendarActivity, error)
	// RefreshHolidays re-fetches and caches the default year/country feed.
	RefreshHolidays(ctx context.Context) error
}

type holidayCacheEntry struct {
	holidays  []Holiday
	fetchedAt time.Time
}

type calendarService struct {
	proposals  repository.ProposalRepository
	httpClient *http.Client
	feedURL    string // e.g. https://date.nager.at/api/v3/PublicHolidays

	mu    sync.RWMutex
	cache map[string]holidayCacheEntry // "year/country" -> entry
	ttl   time.Duration
}

// NewCalendarService returns a new instance of CalendarService
func NewCalendarService(proposals repository.ProposalRepository, feedURL string) CalendarService {
	return &calendarService{
		proposals:  proposals,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		feedURL:    feedURL,
		cache:      make(map[string]holidayCacheEntry),
		ttl:        24 * time.Hour,
	}
}

func cacheKey(year int, countryCode string) string {
	return strconv.Itoa(year) + "/" + countryCode
}

func (s *calendarService) Holidays(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	if countryCode == "" {
		countryCode = defaultHolidayCountry
	}

	key := cacheKey(year, countryCode)
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < s.ttl {
		return entry.holidays, nil
	}

	holidays, err := s.fetchHolidays(ctx, year, countryCode)
	if err != nil {
		// Serve stale data over nothing when the upstream feed is down
		if ok {
			return entry.holidays, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = holidayCacheEntry{holidays: holidays, fetchedAt: time.Now()}
	s.mu.Unlock()

	return holidays, nil
}

func (s *calendarService) RefreshHolidays(ctx context.Context) error {
	year := time.Now().Year()
	holidays, err := s.fetchHolidays(ctx, year, defaultHolidayCountry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[cacheKey(year, defaultHolidayCountry)] = holidayCacheEntry{holidays: holidays, fetchedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *calendarService) fetchHolidays(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	url := fmt.Sprintf("%s/%d/%s", s.feedURL, year, countryCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday feed returned status %d", resp.StatusCode)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holiday feed: %w", err)
	}
	return holidays, nil
}

func (s *calendarService) ApprovedActivities(ctx context.Context) ([]CalendarActivity, error) {
	proposals, err := s.proposals.ListApprovedForCalendar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved activities: %w", err)
	}

	activities := make([]CalendarActivity, 0, len(proposals))
	for _, p := range proposals {
		activity := CalendarActivity{
			ID:        p.ID.String(),
			Title:     p.Title,
			Date:      p.Date.Format("2006-01-02"),
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
		}
		if p.Venue != nil {
			activity.VenueName = p.Venue.Name
		}
		if p.Organization != nil {
			activity.OrganizationName = p.Organization.Name
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
