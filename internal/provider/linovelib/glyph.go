package linovelib

import "strings"

// glyphs maps the private-use code points the site substitutes for common
// characters back to the characters they stand for.
var glyphs = strings.NewReplacer(
	"\uE84A", "的", "\uE85E", "一", "\uE800", "是", "\uE863", "了",
	"\uE849", "我", "\uE856", "不", "\uE811", "人", "\uE80B", "在",
	"\uE81C", "他", "\uE83C", "有", "\uE825", "这", "\uE852", "个",
	"\uE850", "上", "\uE847", "们", "\uE83B", "来", "\uE818", "到",
	"\uE844", "时", "\uE859", "大", "\uE814", "地", "\uE838", "为",
	"\uE85D", "子", "\uE801", "中", "\uE860", "你", "\uE815", "说",
	"\uE848", "生", "\uE80C", "国", "\uE81F", "年", "\uE803", "着",
	"\uE80A", "就", "\uE813", "那", "\uE826", "和", "\uE84B", "要",
	"\uE809", "她", "\uE83D", "出", "\uE83E", "也", "\uE816", "得",
	"\uE854", "里", "\uE83A", "后", "\uE81E", "自", "\uE853", "以",
	"\uE842", "会", "\uE808", "家", "\uE837", "可", "\uE80D", "下",
	"\uE823", "而", "\uE827", "过", "\uE810", "天", "\uE831", "去",
	"\uE841", "能", "\uE835", "对", "\uE84F", "小", "\uE845", "多",
	"\uE834", "然", "\uE807", "于", "\uE833", "心", "\uE846", "学",
	"\uE843", "么", "\uE851", "之", "\uE82A", "都", "\uE830", "好",
	"\uE836", "看", "\uE855", "起", "\uE804", "发", "\uE85A", "当",
	"\uE839", "没", "\uE82E", "成", "\uE81D", "只", "\uE829", "如",
	"\uE802", "事", "\uE82B", "把", "\uE84E", "还", "\uE82C", "用",
	"\uE817", "第", "\uE81B", "样", "\uE822", "道", "\uE857", "想",
	"\uE80F", "作", "\uE806", "种", "\uE861", "开", "\uE858", "美",
	"\uE824", "乳", "\uE805", "阴", "\uE862", "液", "\uE85B", "茎",
	"\uE83F", "欲", "\uE821", "呻", "\uE819", "肉", "\uE80E", "交",
	"\uE82F", "性", "\uE828", "胸", "\uE840", "私", "\uE84C", "穴",
	"\uE84D", "淫", "\uE812", "臀", "\uE81A", "舔", "\uE820", "射",
	"\uE85C", "脱", "\uE82D", "裸", "\uE832", "骚", "\uE85F", "唇",
)

func restoreGlyphs(s string) string {
	return glyphs.Replace(s)
}
