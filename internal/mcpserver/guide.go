package mcpserver

// AuthoringGuide describes the Markdown conventions the page processors
// recognise. LLM consumers should read it before drafting sources.
const AuthoringGuide = `# Pagesmith Authoring Guide

Every source is a Markdown file with optional YAML front matter. The first
processor whose detector accepts the document decides how it is read:
catalog (priority 100), listing (90), article (fallback).

## Front matter

` + "```" + `markdown
---
title: Page title          # OPTIONAL – else the first "# " heading, else the file name
date: 2025-01-15           # OPTIONAL – shown as "January 2025"
excerpt: One-line summary  # OPTIONAL – articles only
template: custom.html      # OPTIONAL – overrides the content type's template
---
` + "```" + `

## Listing pages (` + "`" + `index.md` + "`" + `)

- ` + "`" + `# Title` + "`" + ` sets the page title and subtitle.
- The first ` + "`" + `## ` + "`" + ` heading becomes the header title; a later ` + "`" + `## ` + "`" + ` heading
  containing "Published" or "Upcoming" becomes the section title.
- The first plain paragraph line before any entry is the intro.
- Each ` + "`" + `### Entry title` + "`" + ` opens an entry. Inside it:
  - ` + "`" + `**Status:** In Progress | Updated March 2025` + "`" + ` sets status and date.
  - The first plain line is the summary.
  - ` + "`" + `[Explore](path/index.html)` + "`" + ` sets the link.

## Catalog pages

A document is a catalog when it contains a table with ` + "`" + `| Software |` + "`" + ` and
` + "`" + `| Years Active |` + "`" + ` columns.

- ` + "`" + `## Legends (1970s–1980s)` + "`" + ` opens an era: badge name, then years in
  parentheses. A badge code may come first: ` + "`" + `## HOST (Host Era)` + "`" + `.
- The era's table has six columns: Software, Year, Years Active, Category,
  Description, URL. Wrap the name in ` + "`" + `**bold**` + "`" + ` if you like; it is stripped.
- Plain lines and ` + "`" + `- ` + "`" + ` bullets after the table form the era description.
- Eras without table rows are dropped.
- A ` + "`" + `## ` + "`" + ` heading containing "Traits" starts the traits list:
  ` + "`" + `1. **Simplicity** — Small surface area.` + "`" + `

## Galleries

Declare images in front matter and place a macro in the body:

` + "```" + `markdown
---
gallery:
  - image_path: images/cat.png
    alt: A cat
    url: https://example.com/cat
    title: Cat
---

{% gallery layout="wide" caption="Cats" %}
` + "```" + `

- ` + "`" + `id` + "`" + ` selects another front-matter key (default ` + "`" + `gallery` + "`" + `).
- Without ` + "`" + `layout` + "`" + `, two images get "half" and three or more get "third".
- Upload images with the ` + "`" + `upload_image` + "`" + ` tool; it returns the front-matter entry.
`
