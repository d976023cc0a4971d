package excel

// ReaderConfig controls how sheets are turned into grids.
type ReaderConfig struct {
	Sheet       string   `json:"sheet"`
	FillValue   float64  `json:"fill_value"`
	TimeLayouts []string `json:"time_layouts"`
}

// DefaultReaderConfig reads Sheet1 and accepts ISO dates and timestamps
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Sheet:     "Sheet1",
		FillValue: 1e20,
		TimeLayouts: []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02 15:04",
		},
	}
}
