package models

// ServerRecord represents one synthetic server listing entry.
// Every numeric value is carried as a string to keep the output
// compatible with existing consumers of the listing.
type ServerRecord struct {
	Hostname       string `json:"hostname"`
	IP             string `json:"ip"`
	Score          string `json:"score"`
	Ping           string `json:"ping"`
	Speed          string `json:"speed"`
	CountryLong    string `json:"countrylong"`
	CountryShort   string `json:"countryshort"`
	NumVPNSessions string `json:"numvpnsessions"`
	Uptime         string `json:"uptime"`
	TotalUsers     string `json:"totalusers"`
	TotalTraffic   string `json:"totaltraffic"`
	LogType        string `json:"logtype"`
	Operator       string `json:"operator"`
	Message        string `json:"message"`
	ConfigBase64   string `json:"openvpn_configdata_base64"`
}

// Wrapper is the envelope written for each converted configuration file
type Wrapper struct {
	Servers []ServerRecord `json:"servers"`
}

// Wrap returns a Wrapper holding a single record
func Wrap(record ServerRecord) Wrapper {
	return Wrapper{Servers: []ServerRecord{record}}
}
