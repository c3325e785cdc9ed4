package core

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want Category
	}{
		// Geographic campaigns.
		{"BAGANUUR", CategoryGeographic},
		{"SAINSHAND", CategoryGeographic},

		// Account opening.
		{"10K_OPEN_X", CategoryAccountOpen},
		{"10K_OPEN", CategoryAccountOpen},
		{"ARD_SEC1", CategoryAccountOpen},
		{"10K_KIDS61", CategoryAccountOpen},
		{"PROMO_UTSD", CategoryAccountOpen},
		{"XTETDANSX", CategoryAccountOpen},

		// Financial transactions.
		{"10K_TRANSACTION", CategoryFinancial},
		{"CARD_CHARGE_2", CategoryFinancial},
		{"CCA", CategoryFinancial},
		{"AFFILIATE_BONUS", CategoryFinancial},
		{"LOYALTY_LIMIT", CategoryFinancial},
		{"ZEEL_TULULT", CategoryFinancial},

		// Insurance.
		{"10K_PURCH_INSUR", CategoryInsurance},
		{"DAATGAL_PROMO", CategoryInsurance},

		// Merchant & lifestyle.
		{"MARAL2024", CategoryMerchant},
		{"MARANATA", CategoryMerchant},
		{"KRYPTOS_WEEK", CategoryMerchant},
		{"SUPER_LOTTO", CategoryMerchant},
		{"10K_GAME", CategoryMerchant},

		// Social & engagement.
		{"FACEBOOK_SHARE", CategorySocial},
		{"SELFIE_DAY", CategorySocial},
		{"MEDEELEL", CategorySocial},

		// Investments & securities.
		{"10K_BUY_BOND", CategoryInvestments},
		{"ARD_BIT", CategoryInvestments},
		{"ARD_UBX10", CategoryInvestments},
		{"BOND_1072", CategoryInvestments},
		{"NEWHOUS", CategoryInvestments},

		// Campaigns & events.
		{"ARD_SUMMER", CategoryCampaigns},
		{"INVESTORWEEK25", CategoryCampaigns},
		{"SMART_SAVER", CategoryCampaigns},
		{"PENSION_SURGALT", CategoryCampaigns},
		{"INF2025_BONUS", CategoryCampaigns},
		{"INF2026", CategoryCampaigns},

		// INF needs exactly four digits right after the prefix.
		{"INF99X", CategoryOther},
		{"INF202", CategoryOther},
		{"INFX2025", CategoryOther},

		// Defaults.
		{"RANDOM_UNKNOWN", CategoryOther},
		{MissingCode, CategoryOther},
		{"", CategoryOther},
	}

	for _, tc := range cases {
		if got := Classify(tc.code); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

// First match wins: codes matching several rules must land in the earliest.
func TestClassifyRuleOrder(t *testing.T) {
	cases := []struct {
		code string
		want Category
	}{
		// ARD_SEC1 is both an account-opening code and an ARD_ campaign prefix.
		{"ARD_SEC1", CategoryAccountOpen},
		// UTSD suffix (rule 2) beats the ARD_ campaign prefix (rule 8).
		{"ARD_UTSD", CategoryAccountOpen},
		// TRANSACTION substring (rule 3) beats the ARD_ prefix (rule 8).
		{"ARD_TRANSACTION", CategoryFinancial},
		// DAATGAL (rule 4) beats ARD_ (rule 8).
		{"ARD_DAATGAL", CategoryInsurance},
		// ARD_BIT prefix (rule 7) beats ARD_ (rule 8).
		{"ARD_BITCOIN", CategoryInvestments},
		// HOS substring (rule 7) fires before the campaign rules.
		{"ARDHOS", CategoryInvestments},
	}

	for _, tc := range cases {
		if got := Classify(tc.code); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

// Classification is total: every input resolves to one of the nine groups.
func TestClassifyTotality(t *testing.T) {
	valid := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		valid[c] = true
	}

	inputs := []string{
		"", MissingCode, "BAGANUUR", "10K_OPEN_ABC", "ARD_", "INF",
		"совершенно случайный", "10K", "UTSD", "ardcoin", "薄暮",
	}
	for _, in := range inputs {
		got := Classify(in)
		if !valid[got] {
			t.Errorf("Classify(%q) = %q, not a defined category", in, got)
		}
	}
}
