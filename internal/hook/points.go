package hook

// Point names shared by the theme, the host defaults, toggles, and
// modules.  They are stable identifiers; plugins rely on them.
const (
	// Page regions, in composition order.
	Body                   = "primer_body"
	BeforeHeader           = "primer_before_header"
	BeforeHeaderWrapper    = "primer_before_header_wrapper"
	AfterHeader            = "primer_after_header"
	AfterSiteHeaderWrapper = "primer_after_site_header_wrapper"
	BeforeContent          = "primer_before_content"
	Content                = "primer_content"
	AfterContent           = "primer_after_content"
	Sidebar                = "primer_sidebar"
	FooterWidgets          = "primer_footer_widgets"
	SiteInfo               = "primer_site_info"

	// Declarative registries.
	ImageSizes           = "image_sizes"
	ImageSizeNamesChoose = "image_size_names_choose"
	Sidebars             = "sidebars"
	NavMenus             = "primer_nav_menus"

	// Layout.
	Layout       = "primer_layout"
	ContentWidth = "primer_content_width"
	BodyClass    = "body_class"

	// Host lifecycle.
	AfterSetupTheme  = "after_setup_theme"
	WidgetsInit      = "widgets_init"
	Init             = "init"
	TemplateRedirect = "template_redirect"
	Head             = "wp_head"

	// Host content events.
	CreateCategory        = "create_category"
	EditCategory          = "edit_category"
	DeleteCategory        = "delete_category"
	SavePost              = "save_post"
	UpdateSidebarsWidgets = "update_sidebars_widgets"

	// Host query and output points.
	PostsSearch        = "posts_search"
	QueryVars          = "query_vars"
	GettextWithContext = "gettext_with_context"
	RewriteRules       = "rewrite_rules_array"
	RestEnabled        = "rest_enabled"
	RestJSONPEnabled   = "rest_jsonp_enabled"
	RestAPIInit        = "rest_api_init"
	EmbedDiscover      = "embed_oembed_discover"
	OEmbedDataparse    = "oembed_dataparse"
	EditorPlugins      = "tiny_mce_plugins"
	AdminPrintScripts  = "admin_print_scripts"
	AdminPrintStyles   = "admin_print_styles"
	PrintStyles        = "wp_print_styles"
	ContentFeed        = "the_content_feed"
	CommentTextRSS     = "comment_text_rss"
	Mail               = "wp_mail"
)

// ShowRegion names the boolean filter that gates a region action point.
func ShowRegion(region string) string { return "primer_show_" + region }

// DoFeed names the action fired for a feed request of the given type.
func DoFeed(feed string) string { return "do_feed_" + feed }
