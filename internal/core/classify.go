package core

import "strings"

// Classification is an ordered decision list: rules are evaluated top to
// bottom and the first match wins. The order is load-bearing business
// logic (e.g. ARD_SEC1 must land in Account Opening before the broad ARD_
// campaign prefix is considered) and is pinned by tests.

var geoCodes = map[string]bool{
	"BAGANUUR":  true,
	"BULGAN":    true,
	"DARKHAN":   true,
	"ERDENET":   true,
	"KHENTII":   true,
	"CHOIR":     true,
	"SAINSHAND": true,
	"SELENGE":   true,
}

var accountOpenCodes = map[string]bool{
	"ARD_SEC":    true,
	"ARD_SEC1":   true,
	"ARD_SEC100": true,
	"10K_KIDS61": true,
}

var financialCodes = map[string]bool{
	"LOYALTY_LIMIT":   true,
	"ACO":             true,
	"ZEEL_TULULT":     true,
	"10K_TULBUR_TSES": true,
}

type classifyRule struct {
	group Category
	match func(code string) bool
}

var classifyRules = []classifyRule{
	{CategoryGeographic, func(c string) bool {
		return geoCodes[c]
	}},
	{CategoryAccountOpen, func(c string) bool {
		return strings.HasPrefix(c, "10K_OPEN") ||
			accountOpenCodes[c] ||
			strings.HasSuffix(c, "UTSD") ||
			strings.Contains(c, "TETDANS")
	}},
	{CategoryFinancial, func(c string) bool {
		return containsAny(c, "TRANSACTION", "CHARGE", "CCA", "AFFILIATE") ||
			financialCodes[c]
	}},
	{CategoryInsurance, func(c string) bool {
		return containsAny(c, "INSUR", "DAATGAL")
	}},
	{CategoryMerchant, func(c string) bool {
		return hasAnyPrefix(c, "MARAL", "MARAN") ||
			containsAny(c, "KRYPTOS", "PNP", "LOTTO") ||
			c == "10K_GAME"
	}},
	{CategorySocial, func(c string) bool {
		return containsAny(c, "SOCIAL", "FACEBOOK", "SELFIE", "MEDEE", "TUUH")
	}},
	{CategoryInvestments, func(c string) bool {
		return hasAnyPrefix(c, "10K_BUY", "ARD_BIT", "ARD_IDAX", "ARD_UBX") ||
			containsAny(c, "1072", "HOS", "HOUS")
	}},
	{CategoryCampaigns, func(c string) bool {
		return hasAnyPrefix(c,
			"ARD_", "INVESTORWEEK", "TVMEN", "SMART", "HURUNGU",
			"PENSION_SURGALT", "CREDIT_SURGALT", "CREDIT_ZEEL",
			"ARDCOIN", "CREDIT_AIRDROP")
	}},
	// Yearly campaign codes such as INF2025, INF2026: "INF" followed
	// immediately by four decimal digits.
	{CategoryCampaigns, func(c string) bool {
		return strings.HasPrefix(c, "INF") && len(c) >= 7 && allDigits(c[3:7])
	}},
}

// Classify maps a loyalty code to exactly one Category. It is total: any
// string, including the empty string and the MissingCode sentinel, resolves
// to a category, with CategoryOther as the default.
func Classify(code string) Category {
	for _, rule := range classifyRules {
		if rule.match(code) {
			return rule.group
		}
	}
	return CategoryOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
