package bot

import (
	"fmt"
	"strings"

	"storefront/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	textMainMenu        = "Choose an action in our store:"
	textCategories      = "Choose a product category:"
	textSubcategories   = "Choose a subcategory:"
	textNoProducts      = "There are no products in this subcategory yet."
	textCartEmpty       = "Your cart is empty."
	textFAQ             = "Choose a question from the FAQ:"
	textFAQEmpty        = "The FAQ is empty or unavailable."
	textFAQNotFound     = "Question not found."
	textCatalogDown     = "The catalog is unavailable right now. Please try again later."
	textCategoryMissing = "This category no longer exists."
	textInternalError   = "Something went wrong. Please try again later."
	textSubscribe       = "Hi! To use the bot, please subscribe to our channel and join our group.\n" +
		"After subscribing, press \"Check subscription\"."
)

// screen is a message body with its inline keyboard
type screen struct {
	text   string
	markup *tgbotapi.InlineKeyboardMarkup
}

func keyboard(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

// chunk lays buttons out n per row
func chunk(buttons []tgbotapi.InlineKeyboardButton, n int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > n {
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}

func mainMenuScreen(greeting string) screen {
	text := textMainMenu
	if greeting != "" {
		text = greeting + "\n\n" + textMainMenu
	}
	return screen{
		text: text,
		markup: keyboard(
			tgbotapi.NewInlineKeyboardRow(button("Catalog", cbCatalog), button("Cart", cbCart)),
			tgbotapi.NewInlineKeyboardRow(button("FAQ", cbFAQ)),
		),
	}
}

func subscribeScreen(channelURL, groupURL string) screen {
	var links []tgbotapi.InlineKeyboardButton
	if channelURL != "" {
		links = append(links, tgbotapi.NewInlineKeyboardButtonURL("Subscribe to the channel", channelURL))
	}
	if groupURL != "" {
		links = append(links, tgbotapi.NewInlineKeyboardButtonURL("Join the group", groupURL))
	}
	rows := chunk(links, 2)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Check subscription", cbCheckSubscription)))
	return screen{text: textSubscribe, markup: keyboard(rows...)}
}

func categoriesScreen(categories []domain.Category) screen {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, button(c.Name, withID(prefixCategory, c.ID)))
	}
	rows := chunk(buttons, 2)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Cart", cbCart), button("Back", cbMainMenu)))
	return screen{text: textCategories, markup: keyboard(rows...)}
}

func subcategoriesScreen(subcategories []domain.Subcategory) screen {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(subcategories))
	for _, s := range subcategories {
		buttons = append(buttons, button(s.Name, withID(prefixSubcategory, s.ID)))
	}
	rows := chunk(buttons, 2)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Back to categories", cbBackToCategories)))
	return screen{text: textSubcategories, markup: keyboard(rows...)}
}

// productsScreen renders one page. categoryID 0 sends the back button to the category list.
func productsScreen(subcategoryID, categoryID int64, page *domain.Page[domain.Product]) screen {
	back := button("Back to categories", cbBackToCategories)
	if categoryID > 0 {
		back = button("Back to subcategories", withID(prefixBackToSubcategories, categoryID))
	}

	if page.Pages == 0 || len(page.Items) == 0 {
		return screen{text: textNoProducts, markup: keyboard(tgbotapi.NewInlineKeyboardRow(back))}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range page.Items {
		label := fmt.Sprintf("%s - %s", p.Name, p.Price.StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, withID(prefixProduct, p.ID))))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page.Page > 1 {
		nav = append(nav, button("<", pageData(subcategoryID, page.Page-1)))
	}
	nav = append(nav, button(fmt.Sprintf("%d/%d", page.Page, page.Pages), cbCurrentPage))
	if page.Page < page.Pages {
		nav = append(nav, button(">", pageData(subcategoryID, page.Page+1)))
	}
	rows = append(rows, nav, tgbotapi.NewInlineKeyboardRow(back))

	return screen{
		text:   fmt.Sprintf("Products (page %d of %d):", page.Page, page.Pages),
		markup: keyboard(rows...),
	}
}

func productScreen(p *domain.Product) screen {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Description)
	}
	fmt.Fprintf(&b, "\n\nPrice: %s", p.Price.StringFixed(2))

	return screen{
		text: b.String(),
		markup: keyboard(
			tgbotapi.NewInlineKeyboardRow(button("Add to cart", withID(prefixAddToCart, p.ID))),
			tgbotapi.NewInlineKeyboardRow(button("Back to products", withID(prefixSubcategory, p.SubcategoryID))),
		),
	}
}

func cartScreen(cart *domain.Cart) screen {
	catalogRow := tgbotapi.NewInlineKeyboardRow(button("Catalog", cbCatalog))
	if cart.IsEmpty() {
		return screen{text: textCartEmpty, markup: keyboard(catalogRow)}
	}

	var b strings.Builder
	b.WriteString("Your cart:\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cart.Items)+2)
	for _, item := range cart.Items {
		fmt.Fprintf(&b, "%s x%d - %s\n", item.Product.Name, item.Quantity, item.Subtotal().StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button("Remove "+item.Product.Name, withID(prefixRemoveFromCart, item.Product.ID)),
		))
	}
	fmt.Fprintf(&b, "Total: %s", cart.Total().StringFixed(2))

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(button("Checkout", cbCheckout)),
		catalogRow,
	)
	return screen{text: b.String(), markup: keyboard(rows...)}
}

func paymentScreen(text, paymentURL string) screen {
	return screen{
		text: text,
		markup: keyboard(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Pay", paymentURL)),
			tgbotapi.NewInlineKeyboardRow(button("Catalog", cbCatalog)),
		),
	}
}

func faqListScreen(items []domain.FAQ) screen {
	back := tgbotapi.NewInlineKeyboardRow(button("Back to menu", cbMainMenu))
	if len(items) == 0 {
		return screen{text: textFAQEmpty, markup: keyboard(back)}
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(item.Question, withID(prefixFAQ, item.ID))))
	}
	rows = append(rows, back)
	return screen{text: textFAQ, markup: keyboard(rows...)}
}

func faqText(item domain.FAQ) string {
	return fmt.Sprintf("Question: %s\n\nAnswer: %s", item.Question, item.Answer)
}

func faqDetailScreen(item domain.FAQ) screen {
	return screen{
		text:   faqText(item),
		markup: keyboard(tgbotapi.NewInlineKeyboardRow(button("Back to FAQ", cbFAQ))),
	}
}

func backToMenu(text string) screen {
	return screen{text: text, markup: keyboard(tgbotapi.NewInlineKeyboardRow(button("Back to menu", cbMainMenu)))}
}
