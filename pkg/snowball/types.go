package snowball

// RawQuote is one entry of the screener quote listing. The upstream payload
// is semi-structured: numeric fields arrive as numbers, strings or null
// depending on the listing, so every loosely typed field is kept as the
// decoded JSON value and coerced downstream, field by field.
type RawQuote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	Current            any `json:"current"`
	Percent            any `json:"percent"`
	Chg                any `json:"chg"`
	Volume             any `json:"volume"`
	Amount             any `json:"amount"`
	TurnoverRate       any `json:"turnover_rate"`
	MarketCapital      any `json:"market_capital"`
	FloatMarketCapital any `json:"float_market_capital"`
	PeTTM              any `json:"pe_ttm"`
	PbTTM              any `json:"pb_ttm"`
	RoeTTM             any `json:"roe_ttm"`
	DividendYield      any `json:"dividend_yield"`
	IssueDateTs        any `json:"issue_date_ts"`
	Followers          any `json:"followers"`

	NetProfitCagr  any `json:"net_profit_cagr"`
	IncomeCagr     any `json:"income_cagr"`
	Ps             any `json:"ps"`
	Pcf            any `json:"pcf"`
	Eps            any `json:"eps"`
	MainNetInflows any `json:"main_net_inflows"`
	NorthNetInflow any `json:"north_net_inflow"`
	VolumeRatio    any `json:"volume_ratio"`
	Amplitude      any `json:"amplitude"`
	TotalShares    any `json:"total_shares"`
	FloatShares    any `json:"float_shares"`
	LimitupDays    any `json:"limitup_days"`
	LotSize        any `json:"lot_size"`
	Type           any `json:"type"`
}

type quoteListEnvelope struct {
	Data struct {
		Count int        `json:"count"`
		List  []RawQuote `json:"list"`
	} `json:"data"`
	ErrorCode        int    `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// KlineEnvelope is the time-series response. A non-zero ErrorCode means "no
// usable data", which callers treat as benign, not as a transport failure.
type KlineEnvelope struct {
	ErrorCode        int        `json:"error_code"`
	ErrorDescription string     `json:"error_description"`
	Data             *KlineData `json:"data"`
}

// KlineData pairs a column-name list with row-value arrays; values line up
// with Column by index.
type KlineData struct {
	Symbol string   `json:"symbol"`
	Column []string `json:"column"`
	Item   [][]any  `json:"item"`
}

// Empty reports whether the envelope carries no usable rows.
func (e *KlineEnvelope) Empty() bool {
	return e == nil || e.ErrorCode != 0 || e.Data == nil || len(e.Data.Item) == 0
}

// RealtimeQuote is one entry of the realtime quotec endpoint.
type RealtimeQuote struct {
	Symbol    string `json:"symbol"`
	Current   any    `json:"current"`
	Percent   any    `json:"percent"`
	Chg       any    `json:"chg"`
	Timestamp any    `json:"timestamp"`
}

type realtimeEnvelope struct {
	Data             []RealtimeQuote `json:"data"`
	ErrorCode        int             `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
}
