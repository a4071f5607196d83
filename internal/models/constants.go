package models

// Categories used by the household ledger.
const (
	CategoryFood          = "食費"
	CategoryTransport     = "交通費"
	CategoryEntertainment = "娯楽"
	CategoryDailyGoods    = "日用品"
	CategoryHousing       = "住宅"
	CategoryUtilities     = "水道光熱費"
	CategoryCommunication = "通信費"
	CategoryBeauty        = "美容"
	CategoryHealth        = "健康"
	// CategoryOther is the fallback assigned when no keyword matches.
	CategoryOther = "その他"
)

// DefaultCategories lists the known category set in display order.
var DefaultCategories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryDailyGoods,
	CategoryHousing,
	CategoryUtilities,
	CategoryCommunication,
	CategoryBeauty,
	CategoryHealth,
	CategoryOther,
}

// DefaultSourceTag prefixes descriptions of rows imported from card statements.
const DefaultSourceTag = "クレジットカード: "

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
