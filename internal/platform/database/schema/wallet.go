// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// WalletCoinPackageTable represents the 'wallet.coinpackage' table
type WalletCoinPackageTable struct {
	Table       string
	ID          string
	Amount      string
	Price       string
	Currency    string
	Description string
	Active      string
	CreatedAt   string
}

// WalletCoinPackage is the schema definition for wallet.coinpackage
var WalletCoinPackage = WalletCoinPackageTable{
	Table:       "wallet.coinpackage",
	ID:          "id",
	Amount:      "amount",
	Price:       "price",
	Currency:    "currency",
	Description: "description",
	Active:      "active",
	CreatedAt:   "createdat",
}

func (t WalletCoinPackageTable) Columns() []string {
	return []string{t.ID, t.Amount, t.Price, t.Currency, t.Description, t.Active, t.CreatedAt}
}

// WalletCheckoutSessionTable represents the 'wallet.checkoutsession' table
type WalletCheckoutSessionTable struct {
	Table             string
	ProviderSessionID string
	UserID            string
	PackageID         string
	Amount            string
	Status            string
	CreatedAt         string
	UpdatedAt         string
}

// WalletCheckoutSession is the schema definition for wallet.checkoutsession
var WalletCheckoutSession = WalletCheckoutSessionTable{
	Table:             "wallet.checkoutsession",
	ProviderSessionID: "providersessionid",
	UserID:            "userid",
	PackageID:         "packageid",
	Amount:            "amount",
	Status:            "status",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}

// WalletCoinPurchaseTable represents the 'wallet.coinpurchase' table
type WalletCoinPurchaseTable struct {
	Table             string
	ID                string
	UserID            string
	PackageID         string
	Amount            string
	ProviderSessionID string
	CreatedAt         string
}

// WalletCoinPurchase is the schema definition for wallet.coinpurchase
var WalletCoinPurchase = WalletCoinPurchaseTable{
	Table:             "wallet.coinpurchase",
	ID:                "id",
	UserID:            "userid",
	PackageID:         "packageid",
	Amount:            "amount",
	ProviderSessionID: "providersessionid",
	CreatedAt:         "createdat",
}

// WalletChapterPurchaseTable represents the 'wallet.chapterpurchase' table
type WalletChapterPurchaseTable struct {
	Table      string
	ID         string
	UserID     string
	MangaID    string
	ChapterID  string
	CoinsSpent string
	CreatedAt  string
}

// WalletChapterPurchase is the schema definition for wallet.chapterpurchase
var WalletChapterPurchase = WalletChapterPurchaseTable{
	Table:      "wallet.chapterpurchase",
	ID:         "id",
	UserID:     "userid",
	MangaID:    "mangaid",
	ChapterID:  "chapterid",
	CoinsSpent: "coinsspent",
	CreatedAt:  "createdat",
}
