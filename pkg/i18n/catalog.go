package i18n

// Message keys shared across stores.
const (
	KeyGenericError       = "errors.generic"
	KeyNetworkError       = "errors.network"
	KeyAuthRequired       = "errors.auth_required"
	KeyTokenExpired       = "errors.token_expired"
	KeyAccountNotVerified = "errors.account_not_verified"
	KeyAccountDeactivated = "errors.account_deactivated"
	KeyUserNotFound       = "errors.user_not_found"
	KeyInvalidPassword    = "errors.invalid_password"
	KeyServerError        = "errors.server_error"
	KeyInvalidCode        = "errors.invalid_code"
	KeyMaxAttempts        = "errors.max_attempts_exceeded"
	KeyInvalidResetToken  = "errors.invalid_or_expired_token"
	KeyValidation         = "errors.validation"

	KeyAuthAlertTitle  = "auth.alert_title"
	KeyAuthAlertAction = "auth.alert_action"
	KeyErrorTitle      = "alert.error_title"
	KeyAlertDismiss    = "alert.dismiss"

	KeyLoginFailed        = "session.login_failed"
	KeyRegisterFailed     = "session.register_failed"
	KeyLogoutFailed       = "session.logout_failed"
	KeySessionCheckFailed = "session.check_failed"
	KeyVerifyFailed       = "session.verify_failed"
	KeyResendFailed       = "session.resend_failed"
	KeyResetFailed        = "session.reset_failed"
	KeyProfileFailed      = "session.profile_failed"

	KeyUsersFetchFailed  = "users.fetch_failed"
	KeyUsersUpdateFailed = "users.update_failed"
	KeyUsersDeleteFailed = "users.delete_failed"

	KeyTeamFetchFailed = "team.fetch_failed"
	KeyTeamSaveFailed  = "team.save_failed"

	KeyPostsFetchFailed  = "posts.fetch_failed"
	KeyPostsSaveFailed   = "posts.save_failed"
	KeyPostsDeleteFailed = "posts.delete_failed"

	KeyCategoriesFetchFailed = "categories.fetch_failed"
	KeyCategoriesSaveFailed  = "categories.save_failed"

	KeyUploadFailed = "uploads.failed"

	KeyGalleryFetchFailed  = "gallery.fetch_failed"
	KeyGalleryDeleteFailed = "gallery.delete_failed"
	KeyGalleryBulkDone     = "gallery.bulk_done"
	KeyGalleryBulkPartial  = "gallery.bulk_partial"
	KeyGalleryBulkFailed   = "gallery.bulk_failed"

	KeyChatFailed      = "chat.failed"
	KeyChatRateLimited = "chat.rate_limited"
)

var catalogs = map[string]map[string]string{
	DefaultLocale: {
		KeyGenericError:       "Bir hata oluştu. Lütfen tekrar deneyin.",
		KeyNetworkError:       "Sunucuya ulaşılamıyor. İnternet bağlantınızı kontrol edin.",
		KeyAuthRequired:       "Oturumunuzun süresi doldu. Lütfen tekrar giriş yapın.",
		KeyTokenExpired:       "Oturum süreniz doldu. Giriş sayfasına yönlendiriliyorsunuz.",
		KeyAccountNotVerified: "Hesabınız henüz doğrulanmadı.",
		KeyAccountDeactivated: "Hesabınız devre dışı bırakıldı.",
		KeyUserNotFound:       "Kullanıcı bulunamadı.",
		KeyInvalidPassword:    "Şifre hatalı.",
		KeyServerError:        "Sunucu hatası.",
		KeyInvalidCode:        "Doğrulama kodu hatalı. Kalan deneme hakkı: %d",
		KeyMaxAttempts:        "Deneme hakkınız doldu. Lütfen yeni kod isteyin.",
		KeyInvalidResetToken:  "Bağlantının süresi dolmuş. Lütfen işlemi baştan başlatın.",
		KeyValidation:         "Lütfen formdaki hataları düzeltin.",

		KeyAuthAlertTitle:  "Yetkisiz Erişim",
		KeyAuthAlertAction: "Giriş Yap",
		KeyErrorTitle:      "Hata",
		KeyAlertDismiss:    "Tamam",

		KeyLoginFailed:        "Giriş başarısız.",
		KeyRegisterFailed:     "Kayıt başarısız.",
		KeyLogoutFailed:       "Çıkış yapılamadı.",
		KeySessionCheckFailed: "Oturum doğrulanamadı.",
		KeyVerifyFailed:       "E-posta doğrulanamadı.",
		KeyResendFailed:       "Doğrulama e-postası gönderilemedi.",
		KeyResetFailed:        "Şifre sıfırlanamadı.",
		KeyProfileFailed:      "Profil güncellenemedi.",

		KeyUsersFetchFailed:  "Kullanıcılar yüklenemedi.",
		KeyUsersUpdateFailed: "Kullanıcı güncellenemedi.",
		KeyUsersDeleteFailed: "Kullanıcı silinemedi.",

		KeyTeamFetchFailed: "Ekip bilgileri yüklenemedi.",
		KeyTeamSaveFailed:  "Ekip üyesi kaydedilemedi.",

		KeyPostsFetchFailed:  "Yazılar yüklenemedi.",
		KeyPostsSaveFailed:   "Yazı kaydedilemedi.",
		KeyPostsDeleteFailed: "Yazı silinemedi.",

		KeyCategoriesFetchFailed: "Kategoriler yüklenemedi.",
		KeyCategoriesSaveFailed:  "Kategori kaydedilemedi.",

		KeyUploadFailed: "Görsel yüklenemedi.",

		KeyGalleryFetchFailed:  "Görseller yüklenemedi.",
		KeyGalleryDeleteFailed: "Görsel silinemedi.",
		KeyGalleryBulkDone:     "%d görsel silindi.",
		KeyGalleryBulkPartial:  "%d görsel silindi, %d görsel silinemedi.",
		KeyGalleryBulkFailed:   "%d görsel silinemedi.",

		KeyChatFailed:      "Asistan şu anda yanıt veremiyor.",
		KeyChatRateLimited: "Çok hızlı mesaj gönderiyorsunuz. Lütfen biraz bekleyin.",
	},
	BaseLocale: {
		KeyGenericError:       "Something went wrong. Please try again.",
		KeyNetworkError:       "Cannot reach the server. Check your connection.",
		KeyAuthRequired:       "Your session has ended. Please sign in again.",
		KeyTokenExpired:       "Your session expired. Redirecting to sign in.",
		KeyAccountNotVerified: "Your account is not verified yet.",
		KeyAccountDeactivated: "Your account has been deactivated.",
		KeyUserNotFound:       "User not found.",
		KeyInvalidPassword:    "Incorrect password.",
		KeyServerError:        "Server error.",
		KeyInvalidCode:        "Invalid verification code. Attempts left: %d",
		KeyMaxAttempts:        "Too many attempts. Please request a new code.",
		KeyInvalidResetToken:  "The link has expired. Please start over.",
		KeyValidation:         "Please fix the highlighted fields.",

		KeyAuthAlertTitle:  "Unauthorized",
		KeyAuthAlertAction: "Sign in",
		KeyErrorTitle:      "Error",
		KeyAlertDismiss:    "OK",

		KeyLoginFailed:        "Sign in failed.",
		KeyRegisterFailed:     "Registration failed.",
		KeyLogoutFailed:       "Sign out failed.",
		KeySessionCheckFailed: "Could not verify your session.",
		KeyVerifyFailed:       "Email verification failed.",
		KeyResendFailed:       "Could not resend the verification email.",
		KeyResetFailed:        "Password reset failed.",
		KeyProfileFailed:      "Profile update failed.",

		KeyUsersFetchFailed:  "Could not load users.",
		KeyUsersUpdateFailed: "Could not update the user.",
		KeyUsersDeleteFailed: "Could not delete the user.",

		KeyTeamFetchFailed: "Could not load the team.",
		KeyTeamSaveFailed:  "Could not save the team member.",

		KeyPostsFetchFailed:  "Could not load posts.",
		KeyPostsSaveFailed:   "Could not save the post.",
		KeyPostsDeleteFailed: "Could not delete the post.",

		KeyCategoriesFetchFailed: "Could not load categories.",
		KeyCategoriesSaveFailed:  "Could not save the category.",

		KeyUploadFailed: "Image upload failed.",

		KeyGalleryFetchFailed:  "Could not load images.",
		KeyGalleryDeleteFailed: "Could not delete the image.",
		KeyGalleryBulkDone:     "%d images deleted.",
		KeyGalleryBulkPartial:  "%d images deleted, %d failed.",
		KeyGalleryBulkFailed:   "%d images could not be deleted.",

		KeyChatFailed:      "The assistant cannot answer right now.",
		KeyChatRateLimited: "You are sending messages too quickly. Please wait a moment.",
	},
}
