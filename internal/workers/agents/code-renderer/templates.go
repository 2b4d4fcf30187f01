// internal/workers/agents/code-renderer/templates.go
package coderenderer

// Templates use <% %> delimiters so TSX braces and brackets pass through
// untouched. No template may contain visible copy: every text node reads from
// the content module.

const layoutTemplate = `import type { Metadata } from "next";
import "./globals.css";
import { content } from "@/data/content";
import Navigation from "@/components/Navigation";
import Footer from "@/components/Footer";
<% if .Analytics %>import { Analytics } from "@vercel/analytics/react";
<% end %>
export const metadata: Metadata = {
<% if .HasRootSEO %>  title: content.seo["/"].title,
  description: content.seo["/"].description,
<% else %>  title: content.settings.brand.name,
<% end %>};

export default function RootLayout({ children }: { children: React.ReactNode }) {
  return (
    <html>
      <body>
        <Navigation />
        {children}
        <Footer />
<% if .Analytics %>        <Analytics />
<% end %>      </body>
    </html>
  );
}
`

const globalsTemplate = `:root {
<% with .Colors.Primary %>  --color-primary: <% css . %>;
<% end %><% with .Colors.Secondary %>  --color-secondary: <% css . %>;
<% end %><% with .Colors.Accent %>  --color-accent: <% css . %>;
<% end %><% with .Colors.Background %>  --color-background: <% css . %>;
<% end %><% with .Colors.Text %>  --color-text: <% css . %>;
<% end %><% with .Typography.HeadingFont %>  --font-heading: <% font . %>;
<% end %><% with .Typography.BodyFont %>  --font-body: <% font . %>;
<% end %>}

body {
  margin: 0;
  font-family: var(--font-body, system-ui), sans-serif;
  color: var(--color-text, #1a1a1a);
  background: var(--color-background, #ffffff);
}

h1,
h2,
h3 {
  font-family: var(--font-heading, inherit), sans-serif;
}

.site-header,
.site-footer {
  display: flex;
  flex-wrap: wrap;
  gap: 1.5rem;
  align-items: center;
  justify-content: space-between;
  padding: 1rem 2rem;
}

.button {
  display: inline-block;
  padding: 0.75rem 1.25rem;
  border-radius: 0.5rem;
  background: var(--color-primary, #1a1a1a);
  color: #ffffff;
  text-decoration: none;
}

.grid {
  display: grid;
  gap: 1.5rem;
  grid-template-columns: repeat(auto-fit, minmax(16rem, 1fr));
  list-style: none;
  padding: 0;
}

main > section {
  padding: 3rem 2rem;
}
`

const navigationTemplate = `import Link from "next/link";
import { content } from "@/data/content";

export default function Navigation() {
  const nav = content.navigation;
  return (
    <header className="site-header">
      <Link href="/" className="brand">
        {content.settings.brand.name}
      </Link>
      <nav aria-label={content.settings.brand.name}>
        <ul>
          {nav.items.map((item) => (
            <li key={item.href}>
              <Link href={item.href}>{item.label}</Link>
            </li>
          ))}
        </ul>
      </nav>
<% if .HasCTA %>      <Link href={nav.cta.href} className="button">
        {nav.cta.label}
      </Link>
<% end %>    </header>
  );
}
`

const footerTemplate = `import Link from "next/link";
import { content } from "@/data/content";

export default function Footer() {
  const footer = content.footer;
  return (
    <footer className="site-footer">
      <p className="tagline">{footer.tagline}</p>
<% if .HasColumns %>      {footer.columns.map((column) => (
        <div key={column.title}>
          <h3>{column.title}</h3>
          <ul>
            {column.links.map((link) => (
              <li key={link.href}>
                <Link href={link.href}>{link.label}</Link>
              </li>
            ))}
          </ul>
        </div>
      ))}
<% end %><% if .HasCopyright %>      <small>{footer.copyright}</small>
<% end %>    </footer>
  );
}
`

const sectionRendererTemplate = `import Link from "next/link";
import { content } from "@/data/content";

type Payload = Record<string, any>;
type Section = { readonly id: string; readonly type: string; readonly content: Payload };

function Items({ items }: { items?: readonly Payload[] }) {
  if (!items?.length) return null;
  return (
    <ul className="grid">
      {items.map((item, i) => (
        <li key={i} className="card">
          {item.title && <h3>{item.title}</h3>}
          {item.name && <h3>{item.name}</h3>}
          {item.role && <p className="muted">{item.role}</p>}
          {item.price && <p className="price">{item.price}</p>}
          {item.description && <p>{item.description}</p>}
          {item.bio && <p>{item.bio}</p>}
          {item.quote && <blockquote>{item.quote}</blockquote>}
          {item.author && <cite>{item.author}</cite>}
          {Array.isArray(item.features) && (
            <ul>
              {item.features.map((f: string) => (
                <li key={f}>{f}</li>
              ))}
            </ul>
          )}
        </li>
      ))}
    </ul>
  );
}

function SectionBody({ section }: { section: Section }) {
  const c = section.content;
  switch (section.type) {
    case "hero":
      return (
        <section className="hero">
          <h1>{c.headline}</h1>
          {c.subheadline && <p className="lead">{c.subheadline}</p>}
          {c.ctaLabel && (
            <Link href={c.ctaHref ?? "/"} className="button">
              {c.ctaLabel}
            </Link>
          )}
        </section>
      );
    case "features":
    case "services":
    case "testimonials":
      return (
        <section className={section.type}>
          {c.title && <h2>{c.title}</h2>}
          <Items items={c.items} />
        </section>
      );
    case "team":
      return (
        <section className="team">
          {c.title && <h2>{c.title}</h2>}
          <Items items={c.members} />
        </section>
      );
    case "pricing":
      return (
        <section className="pricing">
          {c.title && <h2>{c.title}</h2>}
          <Items items={c.plans} />
        </section>
      );
    case "gallery":
      return (
        <section className="gallery">
          {c.title && <h2>{c.title}</h2>}
          <div className="grid">
            {(c.images ?? []).map((img: Payload, i: number) => (
              <figure key={i}>
                {img.src && <img src={img.src} alt={img.alt ?? ""} />}
                {img.caption && <figcaption>{img.caption}</figcaption>}
              </figure>
            ))}
          </div>
        </section>
      );
    case "faq":
      return (
        <section className="faq">
          {c.title && <h2>{c.title}</h2>}
          <dl>
            {(c.items ?? []).map((item: Payload, i: number) => (
              <div key={i}>
                <dt>{item.question}</dt>
                <dd>{item.answer}</dd>
              </div>
            ))}
          </dl>
        </section>
      );
    case "cta":
      return (
        <section className="cta">
          <h2>{c.headline}</h2>
          {c.text && <p>{c.text}</p>}
          <Link href={c.buttonHref ?? "/"} className="button">
            {c.buttonLabel}
          </Link>
        </section>
      );
    case "contact": {
      const contact: Payload = content.settings.contact;
      return (
        <section className="contact">
          <h2>{c.title}</h2>
          {c.text && <p>{c.text}</p>}
          <address>
            {contact.email && <a href={"mailto:" + contact.email}>{contact.email}</a>}
            {contact.phone && <p>{contact.phone}</p>}
            {contact.address && <p>{contact.address}</p>}
          </address>
        </section>
      );
    }
    case "text":
      return (
        <section className="text">
          {c.title && <h2>{c.title}</h2>}
          <p>{c.body}</p>
        </section>
      );
    default:
      return null;
  }
}

export default function SectionRenderer({ sections }: { sections: readonly Section[] }) {
  return (
    <>
      {sections.map((section) => (
        <SectionBody key={section.id} section={section} />
      ))}
    </>
  );
}
`

const legalDocumentTemplate = `type Doc = {
  readonly title: string;
  readonly sections: readonly { readonly heading: string; readonly html: string }[];
};

export default function LegalDocument({ doc }: { doc: Doc }) {
  return (
    <main className="legal">
      <h1>{doc.title}</h1>
      {doc.sections.map((s, i) => (
        <section key={i}>
          <h2>{s.heading}</h2>
          <div dangerouslySetInnerHTML={{ __html: s.html }} />
        </section>
      ))}
    </main>
  );
}
`

const pageTemplate = `import type { Metadata } from "next";
import { content } from "@/data/content";
import SectionRenderer from "@/components/SectionRenderer";

const page = content.pages[<% .Index %>];
<% if .HasSEO %>const seo = content.seo[<% .SlugJSON %>];

export const metadata: Metadata = {
  title: seo.title,
  description: seo.description,
};
<% else %>
export const metadata: Metadata = {
  title: page.title,
};
<% end %>
export default function Page() {
  return (
    <main>
      <SectionRenderer sections={page.sections} />
    </main>
  );
}
`

const legalPageTemplate = `import type { Metadata } from "next";
import LegalDocument from "@/components/LegalDocument";
import { legal } from "@/data/legal";

export const metadata: Metadata = {
  title: legal.<% .Key %>.title,
};

export default function Page() {
  return <LegalDocument doc={legal.<% .Key %>} />;
}
`

const notFoundTemplate = `import Link from "next/link";
import { content } from "@/data/content";

export default function NotFound() {
  const copy = content.components.notFound;
  return (
    <main className="not-found">
      <h1>{copy.title}</h1>
      <p>{copy.message}</p>
      <Link href="/">{copy.backLabel}</Link>
    </main>
  );
}
`

const loadingTemplate = `import { content } from "@/data/content";

export default function Loading() {
  return (
    <div className="loading" role="status">
      {content.components.loading.message}
    </div>
  );
}
`
