package hover

type TagDoc struct {
	Description string
	Example     string
}

// TagDocs covers the base tags and the reporting specific ones.
var TagDocs = map[string]TagDoc{
	"assign": {
		Description: "Creates a new variable or overwrites an existing one.",
		Example:     `{% assign total = 0 %}`,
	},
	"capture": {
		Description: "Captures the rendered block into a string variable.",
		Example:     "{% capture title %}Balance {{ period.year }}{% endcapture %}",
	},
	"for": {
		Description: "Repeats a block for every item in an array or range.",
		Example:     "{% for row in custom.rows %}{{ row.name }}{% endfor %}",
	},
	"fori": {
		Description: "Loop over a collection that also lets users add rows in input mode.",
		Example:     "{% fori row in custom.rows %}{% input row.name %}{% endfori %}",
	},
	"if": {
		Description: "Renders a block when the condition is true.",
		Example:     "{% if total > 0 %}positive{% endif %}",
	},
	"ifi": {
		Description: "Like if, but the block is always shown in input mode.",
		Example:     "{% ifi custom.note %}{% input custom.note %}{% endifi %}",
	},
	"unless": {
		Description: "Renders a block when the condition is false.",
		Example:     "{% unless total == 0 %}has total{% endunless %}",
	},
	"case": {
		Description: "Compares a value against each when clause.",
		Example:     "{% case kind %}{% when 'a' %}A{% else %}other{% endcase %}",
	},
	"include": {
		Description: "Inlines a text part or an allowed shared part at this point.",
		Example:     `{% include "parts/details" %}`,
	},
	"t": {
		Description: "Prints a translation. With `t=` it defines the key and its texts per locale.",
		Example:     `{% t= "title" default:"Title" nl:"Titel" %}{% t "title" %}`,
	},
	"push": {
		Description: "Appends an item to an array variable.",
		Example:     "{% push row to:rows %}",
	},
	"pop": {
		Description: "Removes the last item of an array into a variable.",
		Example:     "{% pop rows to:last %}",
	},
	"input": {
		Description: "Renders an input field bound to a custom drop.",
		Example:     "{% input custom.details.amount as:currency %}",
	},
	"result": {
		Description: "Publishes a value as a named result of the template.",
		Example:     "{% result 'total' total %}",
	},
	"rollforward": {
		Description: "Copies a value into the next period when rolling forward.",
		Example:     "{% rollforward custom.note.text custom.note.text %}",
	},
	"unreconciled": {
		Description: "Marks the template unreconciled by the given amount.",
		Example:     "{% unreconciled difference %}",
	},
	"linkto": {
		Description: "Renders a link to another template or account.",
		Example:     "{% linkto period.reconciliations.other %}other{% endlinkto %}",
	},
	"stripnewlines": {
		Description: "Removes newlines from the rendered block.",
		Example:     "{% stripnewlines %}a\nb{% endstripnewlines %}",
	},
	"newpage": {
		Description: "Starts a new page in the export.",
		Example:     "{% newpage %}",
	},
}
