// Package views renders the Local Table site pages as templ components.
package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/localtable"
)

// Views renders pages for one site configuration.
type Views struct {
	site localtable.SiteConfig
}

// New returns views for site.
func New(site localtable.SiteConfig) *Views {
	return &Views{site: site}
}

// Funcs wires every page into the handler-facing ViewFuncs.
func (v *Views) Funcs() localtable.ViewFuncs {
	return localtable.ViewFuncs{
		Home:         v.home,
		About:        v.about,
		HowItWorks:   v.howItWorks,
		BecomeAChef:  v.becomeAChef,
		Contact:      v.contact,
		Blog:         v.blog,
		BlogPartial:  blogResults,
		Post:         v.post,
		Verification: v.verification,

		AdminLogin:     v.adminLogin,
		AdminDashboard: v.adminDashboard,
		AdminForm:      v.adminForm,
		AdminImages:    v.adminImages,

		NotFound: func() templ.Component {
			return errorPage(v.site, "Page not found", "We couldn't find what you were looking for.")
		},
		ServerError: func() templ.Component {
			return errorPage(v.site, "Something went wrong", "Please try again in a moment.")
		},
	}
}

func (v *Views) home(d localtable.HomeData) templ.Component { return homePage(v.site, d) }

func (v *Views) about(meta localtable.PageMeta) templ.Component { return aboutPage(v.site, meta) }

func (v *Views) howItWorks(meta localtable.PageMeta) templ.Component {
	return howItWorksPage(v.site, meta)
}

func (v *Views) becomeAChef(meta localtable.PageMeta) templ.Component {
	return becomeAChefPage(v.site, meta)
}

func (v *Views) contact(meta localtable.PageMeta) templ.Component { return contactPage(v.site, meta) }

func (v *Views) blog(d localtable.BlogData) templ.Component { return blogPage(v.site, d) }

func (v *Views) post(d localtable.PostData) templ.Component { return postPage(v.site, d) }

func (v *Views) verification(meta localtable.PageMeta, r localtable.VerificationResult) templ.Component {
	return verificationPage(v.site, meta, r)
}

func (v *Views) adminLogin(showError bool, csrf string) templ.Component {
	return adminLoginPage(v.site, showError, csrf)
}

func (v *Views) adminDashboard(d localtable.AdminData) templ.Component {
	return adminDashboardPage(v.site, d)
}

func (v *Views) adminForm(p localtable.BlogPost, csrf string) templ.Component {
	return adminFormPage(v.site, p, csrf)
}

func (v *Views) adminImages(images []localtable.Image, csrf string) templ.Component {
	return adminImagesPage(v.site, images, csrf)
}
