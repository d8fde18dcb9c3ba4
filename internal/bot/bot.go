package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Carts is the cart mutation surface the catalog and cart screens need
type Carts interface {
	Add(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, userID int64, productID int64) (*domain.Cart, error)
}

// UserRegistrar registers shoppers with the backend
type UserRegistrar interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName string) (bool, error)
}

type Options struct {
	PageSize        int
	InlineCacheTime int
	NavTTL          time.Duration
}

type Deps struct {
	Sender   Sender
	Catalog  apiclient.CatalogClient
	Users    UserRegistrar
	Carts    Carts
	Checkout *checkout.Conversation
	FAQ      *FAQCache
	Gate     *SubscriptionGate
	Redis    *redis.Client
}

type Bot struct {
	sender   Sender
	catalog  apiclient.CatalogClient
	users    UserRegistrar
	carts    Carts
	checkout *checkout.Conversation
	faq      *FAQCache
	gate     *SubscriptionGate
	nav      *redis.Client
	opts     Options
	metrics  *metrics.BotMetrics
	logger   *zap.Logger
}

func New(deps Deps, opts Options, m *metrics.BotMetrics, logger *zap.Logger) *Bot {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.NavTTL <= 0 {
		opts.NavTTL = 24 * time.Hour
	}
	return &Bot{
		sender:   deps.Sender,
		catalog:  deps.Catalog,
		users:    deps.Users,
		carts:    deps.Carts,
		checkout: deps.Checkout,
		faq:      deps.FAQ,
		gate:     deps.Gate,
		nav:      deps.Redis,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

// HandleUpdate processes one update. It never panics; failures are logged and
// reported to the user as a generic error where a chat is known.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("Panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
		}
	}()

	switch {
	case update.Message != nil:
		b.count("message")
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.count("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		b.count("inline_query")
		b.handleInlineQuery(ctx, update.InlineQuery)
	default:
		b.count("other")
	}
}

func (b *Bot) count(kind string) {
	if b.metrics != nil {
		b.metrics.Updates.WithLabelValues(kind).Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID, chatID := msg.From.ID, msg.Chat.ID

	if !msg.IsCommand() {
		b.handleText(ctx, userID, chatID, msg.Text)
		return
	}

	switch msg.Command() {
	case "start":
		b.start(ctx, msg.From, chatID)
	case "catalog":
		b.showCategories(ctx, chatID, 0)
	case "cart":
		b.showCart(ctx, userID, chatID, 0)
	case "faq":
		b.showFAQ(ctx, chatID, 0)
	case "cancel":
		if err := b.checkout.Cancel(ctx, userID); err != nil {
			b.fail(chatID, "cancel checkout", err)
			return
		}
		b.showCategories(ctx, chatID, 0)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		b.answer(query.ID, "", false)
		return
	}
	userID := query.From.ID
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	cb, ok := parseCallback(query.Data)
	if !ok {
		b.logger.Debug("Unknown callback data", zap.String("data", query.Data))
		b.answer(query.ID, "", false)
		return
	}

	notice, alert := "", false
	switch cb.action {
	case cbMainMenu:
		b.render(chatID, messageID, mainMenuScreen(""))
	case cbCheckSubscription:
		if !b.subscribed(userID) {
			notice, alert = "You are still not subscribed to all required chats.", true
			break
		}
		b.register(ctx, query.From)
		b.render(chatID, messageID, mainMenuScreen(fmt.Sprintf("Thank you for subscribing, %s!", query.From.FirstName)))
	case cbCatalog, cbBackToCategories:
		b.showCategories(ctx, chatID, messageID)
	case prefixCategory, prefixBackToSubcategories:
		b.showSubcategories(ctx, userID, chatID, messageID, cb.id(0))
	case prefixSubcategory:
		b.showProducts(ctx, userID, chatID, messageID, cb.id(0), 1)
	case prefixPage:
		b.showProducts(ctx, userID, chatID, messageID, cb.id(0), int(cb.id(1)))
	case cbCurrentPage:
		notice = "Current page"
	case prefixProduct:
		notice = b.showProduct(ctx, chatID, messageID, cb.id(0))
	case prefixAddToCart:
		notice, alert = b.addToCart(ctx, userID, cb.id(0)), true
	case cbCart:
		b.showCart(ctx, userID, chatID, messageID)
	case prefixRemoveFromCart:
		notice = b.removeFromCart(ctx, userID, chatID, messageID, cb.id(0))
	case cbCheckout:
		notice = b.beginCheckout(ctx, userID, chatID, messageID)
	case cbFAQ:
		b.showFAQ(ctx, chatID, messageID)
	case prefixFAQ:
		b.showFAQItem(ctx, chatID, messageID, cb.id(0))
	}

	b.answer(query.ID, notice, alert)
}

func (b *Bot) subscribed(userID int64) bool {
	return b.gate == nil || b.gate.IsSubscribed(userID)
}

func (b *Bot) start(ctx context.Context, from *tgbotapi.User, chatID int64) {
	if !b.subscribed(from.ID) {
		b.render(chatID, 0, subscribeScreen(b.gate.ChannelURL, b.gate.GroupURL))
		return
	}
	b.register(ctx, from)
	b.render(chatID, 0, mainMenuScreen(fmt.Sprintf("Welcome, %s!", from.FirstName)))
}

// register is best effort; the menu is shown even when the backend is down
func (b *Bot) register(ctx context.Context, from *tgbotapi.User) {
	created, err := b.users.RegisterUser(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		b.logger.Error("Failed to register user", zap.Int64("user_id", from.ID), zap.Error(err))
		return
	}
	if created {
		b.logger.Info("User registered", zap.Int64("user_id", from.ID))
	}
}

func (b *Bot) showCategories(ctx context.Context, chatID int64, messageID int) {
	categories, err := b.catalog.ListCategories(ctx)
	if err != nil {
		b.logger.Error("Failed to list categories", zap.Error(err))
		b.render(chatID, messageID, backToMenu(textCatalogDown))
		return
	}
	b.render(chatID, messageID, categoriesScreen(categories))
}

func (b *Bot) showSubcategories(ctx context.Context, userID, chatID int64, messageID int, categoryID int64) {
	subcategories, err := b.catalog.ListSubcategories(ctx, categoryID)
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		b.render(chatID, messageID, screen{
			text:   textCategoryMissing,
			markup: keyboard(tgbotapi.NewInlineKeyboardRow(button("Back to categories", cbBackToCategories))),
		})
		return
	case err != nil:
		b.logger.Error("Failed to list subcategories", zap.Int64("category_id", categoryID), zap.Error(err))
		b.render(chatID, messageID, backToMenu(textCatalogDown))
		return
	}

	b.rememberCategory(ctx, userID, categoryID)
	b.render(chatID, messageID, subcategoriesScreen(subcategories))
}

func (b *Bot) showProducts(ctx context.Context, userID, chatID int64, messageID int, subcategoryID int64, page int) {
	if page < 1 {
		page = 1
	}
	result, err := b.catalog.ListProducts(ctx, subcategoryID, page, b.opts.PageSize)
	if err != nil {
		b.logger.Error("Failed to list products",
			zap.Int64("subcategory_id", subcategoryID),
			zap.Int("page", page),
			zap.Error(err),
		)
		b.render(chatID, messageID, backToMenu(textCatalogDown))
		return
	}
	b.render(chatID, messageID, productsScreen(subcategoryID, b.lastCategory(ctx, userID), result))
}

// showProduct returns the callback notice
func (b *Bot) showProduct(ctx context.Context, chatID int64, messageID int, productID int64) string {
	product, err := b.catalog.GetProduct(ctx, productID)
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return "Product not found"
	case err != nil:
		b.logger.Error("Failed to load product", zap.Int64("product_id", productID), zap.Error(err))
		return textCatalogDown
	}
	b.render(chatID, messageID, productScreen(product))
	return ""
}

// addToCart snapshots the current product and adds one unit
func (b *Bot) addToCart(ctx context.Context, userID, productID int64) string {
	product, err := b.catalog.GetProduct(ctx, productID)
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return "Product not found"
	case err != nil:
		b.logger.Error("Failed to load product", zap.Int64("product_id", productID), zap.Error(err))
		return textCatalogDown
	}

	if _, err := b.carts.Add(ctx, userID, *product, 1); err != nil {
		b.logger.Error("Failed to add to cart", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return "Could not add the product to your cart."
	}
	return "Added to cart"
}

func (b *Bot) showCart(ctx context.Context, userID, chatID int64, messageID int) {
	cart, err := b.checkout.ViewCart(ctx, userID)
	if err != nil {
		b.fail(chatID, "load cart", err)
		return
	}
	b.render(chatID, messageID, cartScreen(cart))
}

func (b *Bot) removeFromCart(ctx context.Context, userID, chatID int64, messageID int, productID int64) string {
	if _, err := b.carts.Remove(ctx, userID, productID); err != nil {
		b.logger.Error("Failed to remove from cart", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return "Could not update your cart."
	}
	b.showCart(ctx, userID, chatID, messageID)
	return "Removed from cart"
}

func (b *Bot) beginCheckout(ctx context.Context, userID, chatID int64, messageID int) string {
	reply, err := b.checkout.Begin(ctx, userID)
	if err != nil {
		b.fail(chatID, "begin checkout", err)
		return ""
	}

	switch reply.Outcome {
	case checkout.OutcomeIgnored:
		return "Open your cart to check out."
	case checkout.OutcomeEmptyCart:
		b.render(chatID, messageID, cartScreen(&domain.Cart{}))
	default:
		b.render(chatID, messageID, screen{text: reply.Text})
	}
	return ""
}

// handleText feeds free text into the checkout conversation
func (b *Bot) handleText(ctx context.Context, userID, chatID int64, text string) {
	reply, err := b.checkout.HandleText(ctx, userID, text)
	if err != nil {
		b.fail(chatID, "handle checkout input", err)
		return
	}

	switch reply.Outcome {
	case checkout.OutcomeIgnored:
	case checkout.OutcomeCompleted:
		b.render(chatID, 0, paymentScreen(reply.Text, reply.PaymentURL))
	case checkout.OutcomeEmptyCart:
		b.render(chatID, 0, cartScreen(&domain.Cart{}))
	default:
		b.render(chatID, 0, screen{text: reply.Text})
	}
}

func (b *Bot) showFAQ(ctx context.Context, chatID int64, messageID int) {
	items, err := b.faq.List(ctx)
	if err != nil {
		b.logger.Error("Failed to load FAQ", zap.Error(err))
		items = nil
	}
	b.render(chatID, messageID, faqListScreen(items))
}

func (b *Bot) showFAQItem(ctx context.Context, chatID int64, messageID int, id int64) {
	item, ok, err := b.faq.Find(ctx, id)
	if err != nil {
		b.logger.Error("Failed to load FAQ", zap.Error(err))
		b.render(chatID, messageID, backToMenu(textFAQEmpty))
		return
	}
	if !ok {
		b.render(chatID, messageID, screen{
			text:   textFAQNotFound,
			markup: keyboard(tgbotapi.NewInlineKeyboardRow(button("Back to FAQ", cbFAQ))),
		})
		return
	}
	b.render(chatID, messageID, faqDetailScreen(item))
}

func (b *Bot) handleInlineQuery(ctx context.Context, query *tgbotapi.InlineQuery) {
	items, err := b.faq.List(ctx)
	if err != nil {
		b.logger.Error("Failed to load FAQ for inline query", zap.Error(err))
	}

	matches := SearchFAQ(items, query.Query, MaxInlineResults)
	results := make([]interface{}, 0, len(matches))
	for _, item := range matches {
		article := tgbotapi.NewInlineQueryResultArticle(strconv.FormatInt(item.ID, 10), item.Question, faqText(item))
		article.Description = snippet(item.Answer, 100)
		results = append(results, article)
	}

	answer := tgbotapi.InlineConfig{
		InlineQueryID:     query.ID,
		Results:           results,
		CacheTime:         b.opts.InlineCacheTime,
		SwitchPMText:      "FAQ",
		SwitchPMParameter: "faq",
	}
	if len(items) == 0 {
		answer.SwitchPMText = "The FAQ is empty"
		answer.SwitchPMParameter = "faq_empty"
	}

	if _, err := b.sender.Request(answer); err != nil {
		b.logger.Warn("Failed to answer inline query", zap.String("query_id", query.ID), zap.Error(err))
	}
}

func navKey(userID int64) string {
	return fmt.Sprintf("nav:category:%d", userID)
}

// rememberCategory stores the category being browsed so product pages can link back to it
func (b *Bot) rememberCategory(ctx context.Context, userID, categoryID int64) {
	if err := b.nav.Set(ctx, navKey(userID), categoryID, b.opts.NavTTL).Err(); err != nil {
		b.logger.Warn("Failed to store browsing position", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// lastCategory returns 0 when nothing is stored
func (b *Bot) lastCategory(ctx context.Context, userID int64) int64 {
	id, err := b.nav.Get(ctx, navKey(userID)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			b.logger.Warn("Failed to read browsing position", zap.Int64("user_id", userID), zap.Error(err))
		}
		return 0
	}
	return id
}

// render edits messageID in place, or sends a new message when messageID is 0
func (b *Bot) render(chatID int64, messageID int, s screen) {
	var c tgbotapi.Chattable
	if messageID == 0 {
		msg := tgbotapi.NewMessage(chatID, s.text)
		if s.markup != nil {
			msg.ReplyMarkup = *s.markup
		}
		c = msg
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, s.text)
		edit.ReplyMarkup = s.markup
		c = edit
	}

	if _, err := b.sender.Send(c); err != nil {
		b.logger.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(queryID, text string, alert bool) {
	if queryID == "" {
		return
	}
	cfg := tgbotapi.NewCallback(queryID, text)
	cfg.ShowAlert = alert
	if _, err := b.sender.Request(cfg); err != nil {
		b.logger.Warn("Failed to answer callback", zap.String("query_id", queryID), zap.Error(err))
	}
}

func (b *Bot) fail(chatID int64, action string, err error) {
	b.logger.Error("Failed to "+action, zap.Int64("chat_id", chatID), zap.Error(err))
	b.render(chatID, 0, screen{text: textInternalError})
}
