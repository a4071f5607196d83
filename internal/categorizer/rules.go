package categorizer

import (
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/textnorm"
)

// defaultRules is the card statement rule table used by the quick import.
// Order matters: earlier keywords win.
var defaultRules = []models.CategoryRule{
	{Keyword: "マルエツ", Category: models.CategoryFood},
	{Keyword: "カ)マルエツ", Category: models.CategoryFood},
	{Keyword: "イオン", Category: models.CategoryFood},
	{Keyword: "イオンモール", Category: models.CategoryFood},
	{Keyword: "セブン", Category: models.CategoryFood},
	{Keyword: "ローソン", Category: models.CategoryFood},
	{Keyword: "ファミ", Category: models.CategoryFood},
	{Keyword: "スーパー", Category: models.CategoryFood},
	{Keyword: "マクドナルド", Category: models.CategoryFood},
	{Keyword: "スタバ", Category: models.CategoryFood},
	{Keyword: "ドトール", Category: models.CategoryFood},

	{Keyword: "電車", Category: models.CategoryTransport},
	{Keyword: "バス", Category: models.CategoryTransport},
	{Keyword: "定期", Category: models.CategoryTransport},

	{Keyword: "CLAUDE", Category: models.CategoryEntertainment},
	{Keyword: "APPLE", Category: models.CategoryEntertainment},
	{Keyword: "NETFLIX", Category: models.CategoryEntertainment},
	{Keyword: "AMAZON", Category: models.CategoryEntertainment},
	{Keyword: "SPOTIFY", Category: models.CategoryEntertainment},

	{Keyword: "ドラッグ", Category: models.CategoryDailyGoods},
	{Keyword: "マツキヨ", Category: models.CategoryDailyGoods},
	{Keyword: "ココカラ", Category: models.CategoryDailyGoods},
	{Keyword: "ウェルシア", Category: models.CategoryDailyGoods},

	{Keyword: "家賃", Category: models.CategoryHousing},
	{Keyword: "不動産", Category: models.CategoryHousing},

	{Keyword: "電気", Category: models.CategoryUtilities},
	{Keyword: "ガス", Category: models.CategoryUtilities},
	{Keyword: "水道", Category: models.CategoryUtilities},
	{Keyword: "東京", Category: models.CategoryUtilities},

	{Keyword: "ソフトバンク", Category: models.CategoryCommunication},
	{Keyword: "オプテージ", Category: models.CategoryCommunication},
	{Keyword: "Wi-Fi", Category: models.CategoryCommunication},
	{Keyword: "携帯", Category: models.CategoryCommunication},

	{Keyword: "美容", Category: models.CategoryBeauty},
	{Keyword: "理容", Category: models.CategoryBeauty},
	{Keyword: "サロン", Category: models.CategoryBeauty},
	{Keyword: "ララルー", Category: models.CategoryBeauty},
	{Keyword: "スクエア", Category: models.CategoryBeauty},

	{Keyword: "病院", Category: models.CategoryHealth},
	{Keyword: "クリニック", Category: models.CategoryHealth},
	{Keyword: "薬局", Category: models.CategoryHealth},
	{Keyword: "ジム", Category: models.CategoryHealth},
	{Keyword: "トウエンティーフォージム", Category: models.CategoryHealth},

	{Keyword: "楽天証券", Category: models.CategoryOther},
	{Keyword: "E-ビーシーマート", Category: models.CategoryOther},
	{Keyword: "ドン キホーテ", Category: models.CategoryOther},
}

// DefaultRules returns the built-in rule table with normalized keywords.
// Each call returns a fresh mapping.
func DefaultRules() models.CategoryMapping {
	var m models.CategoryMapping
	for _, r := range defaultRules {
		m.Set(textnorm.Normalize(r.Keyword), r.Category)
	}
	return m
}
