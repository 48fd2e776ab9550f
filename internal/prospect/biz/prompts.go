package biz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Keywords is the fixed activity taxonomy used for query generation.
var Keywords = []string{
	"Arts & Crafts",
	"Book Babies",
	"Dance Classes",
	"Events",
	"Gymnastics",
	"Learn Languages",
	"Mums n Bubs Fitness Classes",
	"Music Classes",
	"Playgroup",
	"Playroom",
	"Rhyme Time",
	"Sensory Classes",
	"Singing Lessons",
	"Swimming Lessons",
	"Toddler Time",
}

// Venues is the fixed venue taxonomy used for query generation.
var Venues = []string{
	"Aquatic Centre",
	"Library",
	"Museum",
	"Play Centre",
	"Playground",
	"Toy Library",
	"Other",
	"Community Centre",
}

// MaxQueries caps the number of generated search queries.
const MaxQueries = 15

const (
	querySystemPrompt      = "You are a search query generator. Output only valid JSON arrays containing strings of queries. Return only the JSON array, nothing else."
	extractionSystemPrompt = "You are a precise data extraction assistant. Always return valid JSON arrays."
)

const queryPromptTemplate = `Generate only %[1]d different search queries with each keyword from the list: %[2]s to find relevant websites, listings, and information about kids activities in %[3]s (postcode: %[4]s) in the search engine.
Each query should combine activities from this list: %[2]s
with venues from this list: %[5]s

Follow these rules for effective search queries:
- Find relevant websites, listings, and information about kids activities in %[3]s (postcode: %[4]s)
- Include specific suburbs near %[3]s when relevant
- Add search-relevant terms like "classes", "schedule", "booking", "programs"
- Include age groups (toddler, preschool, kids) where appropriate
- Make queries specific enough to find actual programs, not general information
- Queries must target kids activities for ages 1-8
- Format: "primary activity/topic" + "location/venue" + "relevant qualifiers"

Examples:
- "toddler swimming lessons aquatic centre eastern suburbs sydney schedule NSW 2008"
- "kids art classes community centres inner west sydney bookings NSW 2008"
- "Book Babies sessions Library Griffith NSW 2839"
- "Kids Dance Classes Community Centre near 2839"

Return exactly %[1]d queries as a JSON array of strings.`

const extractionPromptTemplate = `The HTML content is extracted in markdown format.

As an expert website data extraction system, analyze the following content and extract all business-related information.
Only extract a business when:
  1. The business address contains the exact postcode %[1]s or a nearby postcode.
  2. Otherwise return an empty array [].

Extract:
1. Business Names: complete company/business names
2. Email Addresses: the complete email address of the business
3. Address: complete postal/location address, for example (87 Barcom Avenue, DARLINGHURST NSW 2010), (123 Main Street, SYDNEY NSW 2000)
4. Phone Numbers: the complete phone number of the business, international format if present, for example (02) 9391 1234
5. Website Links: the business website URL with no slug, for example https://www.example.com
6. Postcode: the postcode based on the address
7. Internal Navigation Link: the internal navigation link of the content within the website, for example https://www.example.com/about

Return ONLY a JSON array containing objects with these exact fields, with no additional text or formatting:
[
  {
    "business_name": string,
    "address": string,
    "phone_number": string,
    "email": string,
    "website_link": string,
    "postcode": string,
    "internal_navigation_link": string
  }
]

Content to analyze:
%[3]s

Remember: return an empty array [] if the postcode %[1]s and location %[2]s don't match.
Return ONLY the JSON array, nothing else.`

const nullFillPromptTemplate = `Analyze the following HTML content (in markdown format) and extract only missing information to fill null or empty fields in the provided business data. Only extract information that matches the exact business name and location.

Current business data:
%[1]s

Rules for extraction:
1. Only fill empty/null fields - do not override existing data
2. Only extract information that clearly belongs to this specific business
3. Validate all extracted information:
   - Phone: Must be Australian format (e.g., (02) 9391 1234, 0412 345 678)
   - Email: Must be a valid business email
   - Website: Must be complete URL without tracking parameters
   - Address: Must include street, suburb, state and postcode
   - Postcode: Must be 4 digits and match the address

Content to analyze:
%[2]s

Return ONLY a JSON object with the same keys as the input data, containing only newly found information for empty fields. Example:
{
  "phone_number": "0291234567",
  "email": "contact@business.com",
  "website_link": "https://www.example.com",
  "postcode": "2021"
}`

func quotedList(items []string) string {
	b, _ := json.Marshal(items)
	return string(b)
}

func buildQueryPrompt(location, postcode string) string {
	return fmt.Sprintf(queryPromptTemplate, MaxQueries, quotedList(Keywords), location, postcode, quotedList(Venues))
}

func buildExtractionPrompt(content, location, postcode string) string {
	return fmt.Sprintf(extractionPromptTemplate, postcode, location, content)
}

func buildNullFillPrompt(rec *BusinessRecord, content string) string {
	data := make(map[string]string, len(RecordFields))
	for _, f := range RecordFields {
		data[string(f)] = rec.Get(f)
	}
	b, _ := json.MarshalIndent(data, "", "  ")
	return fmt.Sprintf(nullFillPromptTemplate, strings.TrimSpace(string(b)), content)
}
