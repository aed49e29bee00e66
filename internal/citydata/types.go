package citydata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// City is a single catalog record. Field tags keep the Russian keys of the
// published data files.
type City struct {
	Sights      []string     `json:"достопримечательности" yaml:"достопримечательности" validate:"dive,required"`
	Restaurants []string     `json:"рестораны" yaml:"рестораны" validate:"dive,required"`
	Weather     WeatherRange `json:"погода" yaml:"погода"`
	UTCOffset   int          `json:"часовой_пояс" yaml:"часовой_пояс" validate:"gte=-12,lte=14"`
	Transport   Transport    `json:"транспорт" yaml:"транспорт"`
	History     History      `json:"история" yaml:"история"`
	Events      Events       `json:"мероприятия" yaml:"мероприятия"`
}

// WeatherRange bounds the synthesized temperature and lists the possible
// descriptions.
type WeatherRange struct {
	Min          int      `json:"температура_мин" yaml:"температура_мин"`
	Max          int      `json:"температура_макс" yaml:"температура_макс" validate:"gtefield=Min"`
	Descriptions []string `json:"описания" yaml:"описания" validate:"min=1,dive,required"`
}

// Transport lists subway lines, bus notes and taxi companies.
type Transport struct {
	Subway []string `json:"метро" yaml:"метро"`
	Bus    []string `json:"автобусы" yaml:"автобусы"`
	Taxi   []string `json:"такси" yaml:"такси"`
}

// History describes when and by whom the city was founded.
type History struct {
	Founded      Founded  `json:"основание" yaml:"основание"`
	Founder      string   `json:"основатель" yaml:"основатель"`
	ShortHistory []string `json:"краткая_история" yaml:"краткая_история"`
	FunFacts     []string `json:"интересные_факты" yaml:"интересные_факты"`
}

// Events groups upcoming events by kind.
type Events struct {
	Concerts    []Event `json:"концерты" yaml:"концерты" validate:"dive"`
	Exhibitions []Event `json:"выставки" yaml:"выставки" validate:"dive"`
	Theater     []Event `json:"театр" yaml:"театр" validate:"dive"`
}

// Event is a single concert, exhibition or performance.
type Event struct {
	Title string `json:"название" yaml:"название" validate:"required"`
	Venue string `json:"место" yaml:"место"`
	Date  string `json:"дата" yaml:"дата"`
	Price string `json:"цена" yaml:"цена"`
}

// SightDescription is the optional detail record for one sight of a city.
type SightDescription struct {
	Description string `json:"описание" yaml:"описание"`
	Address     string `json:"адрес" yaml:"адрес"`
	Hours       string `json:"время_работы" yaml:"время_работы"`
	Admission   string `json:"вход" yaml:"вход"`
}

// Founded is the founding year. Source files carry it either as a number
// (1147) or as free text ("IX век"), so both forms are accepted.
type Founded string

// UnmarshalJSON accepts a JSON string or number.
func (f *Founded) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Founded(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("founded: expected string or number, got %s", data)
	}
	*f = Founded(n.String())
	return nil
}

// MarshalJSON writes integer years as numbers and everything else as strings.
func (f Founded) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(f)); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

// UnmarshalYAML accepts any scalar.
func (f *Founded) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("founded: expected scalar at line %d", node.Line)
	}
	*f = Founded(strings.TrimSpace(node.Value))
	return nil
}

// Catalog holds both lookup tables. City keys are normalized; sight names are
// kept exactly as listed in the city record.
type Catalog struct {
	Cities map[string]City
	Sights map[string]map[string]SightDescription
}

// Len reports the number of cities.
func (c Catalog) Len() int { return len(c.Cities) }

// SightCount reports the number of described sights across all cities.
func (c Catalog) SightCount() int {
	n := 0
	for _, s := range c.Sights {
		n += len(s)
	}
	return n
}

// NormalizeCity folds a user-typed or stored city name into a lookup key.
func NormalizeCity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Weather is one synthesized observation.
type Weather struct {
	Temperature int
	Description string
}

// Overview is the general city summary.
type Overview struct {
	Sights      []string
	Restaurants []string
	Weather     Weather
}

// WeatherReport pairs a weather observation with the city's local date and
// time, formatted as DD.MM.YYYY and HH:MM.
type WeatherReport struct {
	Weather Weather
	Date    string
	Time    string
}

// Sight joins a sight name with its description record.
type Sight struct {
	Name string
	SightDescription
}
