package models

// Language constants
const (
	LangIndonesian = "id"
	LangEnglish    = "en"
)

// Translation is a map of message keys to translated text
type Translation map[string]string

// Translations stores all language translations
var Translations = map[string]Translation{
	LangIndonesian: {
		"welcome": "👋 Halo! Ini <b>%s</b> via Telegram.\n\n" +
			"Sebelum chat masuk ke admin, pilih dulu tujuan kamu:\n" +
			"• /websupport — kendala website\n" +
			"• /advertise — mau beriklan\n" +
			"• /reportlink — lapor link/konten\n\n" +
			"Setelah memilih, kirim pesan kamu seperti biasa.\n" +
			"Ketik /end untuk mengakhiri percakapan.",
		"admin_help": "🛠 <b>Perintah admin</b>\n" +
			"• reply pesan user — balas ke user\n" +
			"• reply + /ban — blokir user 24 jam (bot minta alasan)\n" +
			"• reply + /unban — cabut blokir\n" +
			"• reply + /end — akhiri percakapan user\n" +
			"• foto + caption /setbanner — set banner balasan (/setbanner off untuk hapus)\n" +
			"• /users, /users active7d, /users today — statistik user",

		"category_selected": "✅ Oke! Kamu masuk ke <b>%s</b>. Silakan tulis pesan kamu.",
		"category_active":   "⚠️ Kamu masih dalam percakapan <b>%s</b>. Ketik /end dulu sebelum memilih tujuan lain.",
		"pick_category":     "⚠️ Pilih dulu tujuan chat: /websupport atau /advertise atau /reportlink",
		"banned_notice":     "⛔ Kamu diblokir sementara sampai <b>%s</b>.\nAlasan: %s",
		"store_error":       "❌ Terjadi gangguan, coba lagi nanti.",
		"relay_failed":      "❌ Pesan kamu belum terkirim ke admin, coba kirim ulang sebentar lagi.",

		"envelope_header": "📩 <b>INCOMING</b>\n👤 %s\n🏷️ <b>Type:</b> %s\n— — —\n",
		"envelope_media":  "<i>[media/message forwarded below]</i>",
		"reply_prefix":    "💬 <b>%s</b>\n",

		"admin_need_reply":       "⚠️ Balas (reply) pesan user yang mau kamu jawab, biar bot tau target user-nya.",
		"admin_target_not_found": "⚠️ Target user tidak ditemukan untuk reply ini. Pastikan kamu reply ke pesan yang bot kirim/forward.",
		"admin_not_owner":        "⚠️ Kamu bukan admin untuk kategori chat ini.",
		"admin_delivery_failed":  "❌ Pesan gagal dikirim ke user.",
		"admin_no_category":      "⚠️ Kamu tidak memegang kategori apa pun.",

		"ban_ask_reason": "✍️ Kirim alasan blokir untuk user <code>%d</code>.",
		"ban_done_admin": "✅ User <code>%d</code> diblokir sampai %s.\nAlasan: %s",
		"ban_failed":     "❌ Gagal memblokir user, coba lagi.",
		"unban_done":     "✅ Blokir user <code>%d</code> dicabut.",
		"unban_user":     "✅ Blokir kamu sudah dicabut.",

		"chat_ended_user":  "✅ Percakapan kamu sudah diakhiri. Pilih tujuan lagi untuk memulai percakapan baru.",
		"chat_ended_admin": "✅ Percakapan user <code>%d</code> (%s) diakhiri.\nPesan dihapus: %d, gagal: %d, tidak diketahui: %d",
		"nothing_to_end":   "ℹ️ Tidak ada percakapan aktif.",
		"end_failed":       "❌ Gagal mengakhiri percakapan, coba lagi.",

		"banner_set":        "✅ Banner diset untuk: %s",
		"banner_cleared":    "✅ Banner dihapus untuk: %s",
		"banner_need_photo": "⚠️ Kirim foto dengan caption /setbanner atau reply ke foto dengan /setbanner.",

		"users_total":    "👥 Total user di database: <b>%d</b>",
		"users_active7d": "👤 User aktif 7 hari terakhir: <b>%d</b>",
		"users_today":    "🆕 User daftar hari ini (UTC): <b>%d</b>",
		"stats_error":    "❌ Error: <code>%s</code>",

		"archive_caption": "🗂 <b>Transcript</b>\nUser: <code>%d</code>\nActor: <code>%d</code>\nKategori: %s\nWaktu: %s",

		"cmd_desc_start":      "Mulai dan lihat pilihan tujuan",
		"cmd_desc_websupport": "Kendala website",
		"cmd_desc_advertise":  "Beriklan",
		"cmd_desc_reportlink": "Lapor link/konten",
		"cmd_desc_end":        "Akhiri percakapan",
	},
	LangEnglish: {
		"welcome": "👋 Hi! This is <b>%s</b> on Telegram.\n\n" +
			"Before your chat reaches an admin, pick a destination:\n" +
			"• /websupport — website issues\n" +
			"• /advertise — advertising\n" +
			"• /reportlink — report a link or content\n\n" +
			"After picking, just send your message.\n" +
			"Send /end to finish the conversation.",
		"admin_help": "🛠 <b>Admin commands</b>\n" +
			"• reply to a user message — answer the user\n" +
			"• reply + /ban — block the user for 24h (the bot asks for a reason)\n" +
			"• reply + /unban — lift a block\n" +
			"• reply + /end — end the user's conversation\n" +
			"• photo + caption /setbanner — set the reply banner (/setbanner off clears it)\n" +
			"• /users, /users active7d, /users today — user statistics",

		"category_selected": "✅ Okay! You are now talking to <b>%s</b>. Please write your message.",
		"category_active":   "⚠️ You are still in a <b>%s</b> conversation. Send /end before picking another destination.",
		"pick_category":     "⚠️ Pick a destination first: /websupport, /advertise or /reportlink",
		"banned_notice":     "⛔ You are temporarily blocked until <b>%s</b>.\nReason: %s",
		"store_error":       "❌ Something went wrong, please try again later.",
		"relay_failed":      "❌ Your message did not reach the admin, please send it again in a moment.",

		"envelope_header": "📩 <b>INCOMING</b>\n👤 %s\n🏷️ <b>Type:</b> %s\n— — —\n",
		"envelope_media":  "<i>[media/message forwarded below]</i>",
		"reply_prefix":    "💬 <b>%s</b>\n",

		"admin_need_reply":       "⚠️ Reply to the user message you want to answer so the bot knows the target user.",
		"admin_target_not_found": "⚠️ No user found for this reply. Make sure you reply to a message the bot sent or forwarded.",
		"admin_not_owner":        "⚠️ You are not the admin of this chat's category.",
		"admin_delivery_failed":  "❌ The message could not be delivered to the user.",
		"admin_no_category":      "⚠️ You do not own any category.",

		"ban_ask_reason": "✍️ Send the block reason for user <code>%d</code>.",
		"ban_done_admin": "✅ User <code>%d</code> is blocked until %s.\nReason: %s",
		"ban_failed":     "❌ Could not block the user, try again.",
		"unban_done":     "✅ Block of user <code>%d</code> lifted.",
		"unban_user":     "✅ Your block has been lifted.",

		"chat_ended_user":  "✅ Your conversation has ended. Pick a destination to start a new one.",
		"chat_ended_admin": "✅ Conversation of user <code>%d</code> (%s) ended.\nMessages deleted: %d, failed: %d, unknown: %d",
		"nothing_to_end":   "ℹ️ There is no active conversation.",
		"end_failed":       "❌ Could not end the conversation, try again.",

		"banner_set":        "✅ Banner set for: %s",
		"banner_cleared":    "✅ Banner cleared for: %s",
		"banner_need_photo": "⚠️ Send a photo captioned /setbanner or reply to a photo with /setbanner.",

		"users_total":    "👥 Users in database: <b>%d</b>",
		"users_active7d": "👤 Users active in the last 7 days: <b>%d</b>",
		"users_today":    "🆕 Users registered today (UTC): <b>%d</b>",
		"stats_error":    "❌ Error: <code>%s</code>",

		"archive_caption": "🗂 <b>Transcript</b>\nUser: <code>%d</code>\nActor: <code>%d</code>\nCategory: %s\nClosed: %s",

		"cmd_desc_start":      "Start and list destinations",
		"cmd_desc_websupport": "Website issues",
		"cmd_desc_advertise":  "Advertising",
		"cmd_desc_reportlink": "Report a link or content",
		"cmd_desc_end":        "End the conversation",
	},
}

// GetTranslation returns the translated text for a key in the given language
func GetTranslation(lang, key string) string {
	if _, ok := Translations[lang]; !ok {
		lang = LangIndonesian
	}

	if translation, ok := Translations[lang][key]; ok {
		return translation
	}

	// Fall back to Indonesian if key not found in specified language
	if translation, ok := Translations[LangIndonesian][key]; ok {
		return translation
	}

	return key
}
