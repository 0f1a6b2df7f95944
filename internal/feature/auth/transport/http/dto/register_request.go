package dto

// RegisterForm は POST /register のフォーム入力を表します。
// 必須チェックと確認用パスワードの一致はユースケースで検証し、元の画面と同じメッセージを返します。
type RegisterForm struct {
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}
