package enrich

import (
	"fmt"

	"reelscribe/internal/textutil"
)

const (
	titleBodyLimit    = 500
	titleCaptionLimit = 200
)

const cleanInstructions = `تو ویراستار محتوای وبسایت هستی. متن زیر ترنسکریپشن یک ویدیوی اینستاگرام است.
متن را روان و خوانا کن، تکرارها و عبارات محاوره‌ای را اصلاح کن، و همه اطلاعات کلیدی مثل قیمت و راه تماس را دقیقاً نگه دار.
فقط متن ویرایش‌شده را برگردان.`

const titleInstructions = `تو برای آگهی‌های املاک عنوان می‌نویسی.
بر اساس محتوای زیر یک عنوان فارسی جذاب و منحصر به فرد بین ۶ تا ۱۵ کلمه بنویس که نوع ملک و منطقه را نام ببرد.
فقط خود عنوان را بنویس، بدون توضیح یا علامت نقل قول.`

func cleanPrompt(raw string) string {
	return fmt.Sprintf("%s\n\nمتن اصلی:\n%s\n\nمتن تمیز شده:", cleanInstructions, raw)
}

func titlePrompt(body, caption, agentName, emptyCaption string) string {
	if caption == "" {
		caption = emptyCaption
	}
	prompt := fmt.Sprintf("%s\n\nمحتوا:\n%s\n\nکپشن اصلی:\n%s\n",
		titleInstructions,
		textutil.Prefix(body, titleBodyLimit),
		textutil.Prefix(caption, titleCaptionLimit),
	)
	if agentName != "" {
		prompt += fmt.Sprintf("\nمشاور: %s\n", agentName)
	}
	return prompt + "\nعنوان فارسی:"
}
