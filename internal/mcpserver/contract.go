package mcpserver

// CardFormatContract describes the deck layout and the review protocol
// that LLM clients should follow.
const CardFormatContract = `# memyaml Deck Format

A deck is a directory holding one metadata file, one or more card files, and
the ledger ` + "`deck.lock`" + ` that memyaml maintains itself.

## Deck metadata

` + "`deck.yaml`" + ` (or ` + "`deck.yml`" + `, ` + "`deck.json`" + `; file name case does not matter):

` + "```" + `yaml
name: Japanese basics            # REQUIRED
description: Hiragana and words  # OPTIONAL
card_files:                      # REQUIRED, paths relative to the deck directory
  - cards_1.yml
algorithm: fsrs                  # OPTIONAL, only fsrs is supported
fsrs_option:
  retention: 0.75                # OPTIONAL, strictly between 0 and 1
` + "```" + `

## Card files

A YAML list. ` + "`name`" + ` is the question, ` + "`content`" + ` the answer.

` + "```" + `yaml
- name: こんにちわ     # REQUIRED
  content: Hello       # REQUIRED
  tags: [greeting]     # OPTIONAL
- name: せかい
  glance: noun         # OPTIONAL hint shown with the question
  content: World
` + "```" + `

## Identity

A card is identified by its name and content together. Editing either one
turns it into a new card and its review progress starts over. Ids look like
` + "`<name-uuid>:<content-uuid>`" + `.

## Review protocol

1. Call ` + "`next_card`" + `. It returns the question side, or reports that no card is due.
2. Ask the user the question. Call ` + "`reveal_card`" + ` to get the answer.
3. Let the user grade their recall and call ` + "`review_card`" + ` with one of
   ` + "`Again`" + ` (forgotten), ` + "`Hard`" + `, ` + "`Good`" + `, ` + "`Easy`" + `.
4. ` + "`ignore_card`" + ` removes a card from future reviews without deleting it.
5. Never edit ` + "`deck.lock`" + ` by hand.
`
