package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
)

func newResolver(pages *mockCrawler, contacts *mockContacts, llm *mockLLM) *EnrichmentResolver {
	return NewEnrichmentResolver(pages, contacts, llm, EnrichConfig{}, zap.NewNop())
}

func TestEnrichPrimary_WebsiteContactLink(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}

	pages.On("Crawl", mock.Anything, "https://www.splashers.com.au", mock.Anything).Return(pageResult(
		"https://www.splashers.com.au", "home",
		crawler.Link{Href: "https://www.splashers.com.au/about", Text: "About"},
		crawler.Link{Href: "https://www.splashers.com.au/get-in-touch", Text: "Contact Us"},
	))
	pages.On("Crawl", mock.Anything, "https://www.splashers.com.au/get-in-touch", mock.Anything).
		Return(pageResult("https://www.splashers.com.au/get-in-touch", "Phone 02 9391 1234"))
	llm.On("CreateChatCompletion", mock.Anything, promptContains("Phone 02 9391 1234")).
		Return(textResponse("```json\n{\"phone_number\": \"0293911234\", \"email\": \"hello@splashers.com.au\", \"business_name\": \"Renamed\"}\n```"), nil)

	rec := &BusinessRecord{BusinessName: "Little Splashers", WebsiteLink: "https://www.splashers.com.au"}
	newResolver(pages, &mockContacts{}, llm).EnrichPrimary(context.Background(), rec)

	assert.Equal(t, "Little Splashers", rec.BusinessName)
	assert.Equal(t, "0293911234", rec.PhoneNumber)
	assert.Equal(t, "hello@splashers.com.au", rec.Email)
	pages.AssertExpectations(t)
	llm.AssertExpectations(t)
}

func TestEnrichPrimary_NoContactLinkLeavesRecord(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}
	pages.On("Crawl", mock.Anything, "https://gym.au", mock.Anything).
		Return(pageResult("https://gym.au", "home", crawler.Link{Href: "https://gym.au/classes", Text: "Classes"}))

	rec := &BusinessRecord{WebsiteLink: "https://gym.au"}
	newResolver(pages, &mockContacts{}, llm).EnrichPrimary(context.Background(), rec)

	assert.Empty(t, rec.PhoneNumber)
	llm.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestEnrichPrimary_CrawlFailureSkipsLLM(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}
	pages.On("Crawl", mock.Anything, "https://gym.au/about", mock.Anything).
		Return(crawler.Result{URL: "https://gym.au/about", Err: errors.New("timeout")})

	rec := &BusinessRecord{InternalNavigationLink: "https://gym.au/about"}
	newResolver(pages, &mockContacts{}, llm).EnrichPrimary(context.Background(), rec)

	assert.Empty(t, rec.PhoneNumber)
	llm.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestEnrichPrimary_InternalLinkArrayReply(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}
	pages.On("Crawl", mock.Anything, "https://council.nsw.gov.au/rhyme-time", mock.Anything).
		Return(pageResult("https://council.nsw.gov.au/rhyme-time", "Rhyme time at the library"))
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse(`[{"email": "library@council.nsw.gov.au"}, {"email": "other@x.au"}]`), nil)

	rec := &BusinessRecord{InternalNavigationLink: "https://council.nsw.gov.au/rhyme-time"}
	newResolver(pages, &mockContacts{}, llm).EnrichPrimary(context.Background(), rec)

	assert.Equal(t, "library@council.nsw.gov.au", rec.Email)
}

func TestEnrichPrimary_Sentinel(t *testing.T) {
	rec := &BusinessRecord{BusinessName: "Pop-up Playgroup"}
	newResolver(&mockCrawler{}, &mockContacts{}, &mockLLM{}).EnrichPrimary(context.Background(), rec)
	assert.Equal(t, InternalLinkNotFound, rec.PhoneNumber)

	rec = &BusinessRecord{PhoneNumber: "0412345678"}
	newResolver(&mockCrawler{}, &mockContacts{}, &mockLLM{}).EnrichPrimary(context.Background(), rec)
	assert.Equal(t, "0412345678", rec.PhoneNumber)
}

func TestEnrichSecondary_ProbesUntilComplete(t *testing.T) {
	contacts := &mockContacts{}
	contacts.On("ExtractContactInfo", mock.Anything, "https://www.splashers.com.au/contact").
		Return(crawler.ContactInfo{URL: "https://www.splashers.com.au/contact", Error: "404"}).Once()
	contacts.On("ExtractContactInfo", mock.Anything, "https://www.splashers.com.au/contact-us").
		Return(crawler.ContactInfo{Success: true, PhoneNumber: "0293911234"}).Once()
	contacts.On("ExtractContactInfo", mock.Anything, "https://www.splashers.com.au/contact.html").
		Return(crawler.ContactInfo{Success: true, PhoneNumber: "0400000000", Email: "hi@splashers.com.au"}).Once()

	rec := &BusinessRecord{WebsiteLink: "https://www.splashers.com.au/swim/lessons?utm=1"}
	newResolver(&mockCrawler{}, contacts, &mockLLM{}).EnrichSecondary(context.Background(), rec)

	assert.Equal(t, "0293911234", rec.PhoneNumber)
	assert.Equal(t, "hi@splashers.com.au", rec.Email)
	contacts.AssertExpectations(t)
	contacts.AssertNotCalled(t, "ExtractContactInfo", mock.Anything, "https://www.splashers.com.au/contact-us.html")
	contacts.AssertNotCalled(t, "ExtractContactInfo", mock.Anything, "https://www.splashers.com.au/")
}

func TestEnrichSecondary_SkipsWhenComplete(t *testing.T) {
	contacts := &mockContacts{}
	rec := &BusinessRecord{WebsiteLink: "https://gym.au", PhoneNumber: "0293911234", Email: "a@gym.au"}
	newResolver(&mockCrawler{}, contacts, &mockLLM{}).EnrichSecondary(context.Background(), rec)
	contacts.AssertNotCalled(t, "ExtractContactInfo", mock.Anything, mock.Anything)
}

func TestEnrichSecondary_ProbesSiteRootLast(t *testing.T) {
	contacts := &mockContacts{}
	var probed []string
	contacts.On("ExtractContactInfo", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { probed = append(probed, args.String(1)) }).
		Return(crawler.ContactInfo{})

	rec := &BusinessRecord{WebsiteLink: "gym.au"}
	newResolver(&mockCrawler{}, contacts, &mockLLM{}).EnrichSecondary(context.Background(), rec)

	assert.Equal(t, []string{
		"https://gym.au/contact",
		"https://gym.au/contact-us",
		"https://gym.au/contact.html",
		"https://gym.au/contact-us.html",
		"https://gym.au/",
	}, probed)
}

func TestEnrichSecondary_InternalLinkDoesNotOverwrite(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}
	pages.On("Crawl", mock.Anything, "https://council.nsw.gov.au/rhyme-time", mock.Anything).
		Return(pageResult("https://council.nsw.gov.au/rhyme-time", "Rhyme time"))
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse(`{"phone_number": "0299999999", "email": "library@council.nsw.gov.au", "address": "1 Library Lane, SYDNEY NSW 2000"}`), nil)

	rec := &BusinessRecord{
		InternalNavigationLink: "https://council.nsw.gov.au/rhyme-time",
		PhoneNumber:            "0291111111",
	}
	newResolver(pages, &mockContacts{}, llm).EnrichSecondary(context.Background(), rec)

	assert.Equal(t, "0291111111", rec.PhoneNumber)
	assert.Equal(t, "library@council.nsw.gov.au", rec.Email)
	assert.Equal(t, "1 Library Lane, SYDNEY NSW 2000", rec.Address)
}

func TestEnrich_AdvancesState(t *testing.T) {
	rec := &BusinessRecord{State: StateExtracted}
	newResolver(&mockCrawler{}, &mockContacts{}, &mockLLM{}).Enrich(context.Background(), rec)
	assert.Equal(t, StateEnriched, rec.State)
	assert.Equal(t, InternalLinkNotFound, rec.PhoneNumber)
}

func TestEnrichPrimary_FillsContactFieldsOnly(t *testing.T) {
	pages := &mockCrawler{}
	llm := &mockLLM{}
	pages.On("Crawl", mock.Anything, "https://kindy.au/programs", mock.Anything).
		Return(pageResult("https://kindy.au/programs", "Kindy gym programs"))
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse(`{"business_name": "Invented Name", "internal_navigation_link": "https://elsewhere.au/x", "email": "a@b.au"}`), nil)

	rec := &BusinessRecord{InternalNavigationLink: "https://kindy.au/programs"}
	newResolver(pages, &mockContacts{}, llm).EnrichPrimary(context.Background(), rec)

	assert.Equal(t, "a@b.au", rec.Email)
	assert.Empty(t, rec.BusinessName)
	assert.Equal(t, "https://kindy.au/programs", rec.InternalNavigationLink)
}

func TestFillNulls_IgnoresNameAndLink(t *testing.T) {
	llm := &mockLLM{}
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse(`{"business_name": "Made Up", "internal_navigation_link": "https://x.au", "address": "2 Pitt St, SYDNEY NSW 2000", "postcode": 2000}`), nil)

	rec := &BusinessRecord{}
	filled := newResolver(&mockCrawler{}, &mockContacts{}, llm).FillNulls(context.Background(), rec, "content")

	assert.ElementsMatch(t, []Field{FieldAddress, FieldPostcode}, filled)
	assert.Empty(t, rec.BusinessName)
	assert.Empty(t, rec.InternalNavigationLink)
	assert.Equal(t, "2000", rec.Postcode)
}

func TestFillNulls_BadReply(t *testing.T) {
	llm := &mockLLM{}
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(textResponse("no idea"), nil)

	rec := &BusinessRecord{}
	filled := newResolver(&mockCrawler{}, &mockContacts{}, llm).FillNulls(context.Background(), rec, "content")
	assert.Empty(t, filled)
	assert.True(t, rec.IsEmpty())
}

func TestFindContactLink(t *testing.T) {
	page := &crawler.Page{
		InternalLinks: []crawler.Link{{Href: "https://a.au/about", Text: "About"}},
		ExternalLinks: []crawler.Link{{Href: "https://forms.example.net/contact-us", Text: "Enquire"}},
	}
	link, ok := FindContactLink(page)
	require.True(t, ok)
	assert.Equal(t, "https://forms.example.net/contact-us", link.Href)

	_, ok = FindContactLink(&crawler.Page{})
	assert.False(t, ok)
}
