package testutil

import "strings"

// ValidDocument is the minimal end-to-end IR document: one signal s, one
// coil c and a rung r energising c when s is closed.
const ValidDocument = `{"version":"0.1.0","module":{"name":"m","signals":[{"name":"s"}],"coils":[{"name":"c"}],"rungs":[{"name":"r","guard":{"type":"contact","name":"s","contact_type":"NO"},"actions":[{"type":"energise","coil":"c"}]}]}}`

// ValidYAMLDocument is ValidDocument in YAML.
const ValidYAMLDocument = `version: "0.1.0"
module:
  name: m
  signals:
    - name: s
  coils:
    - name: c
  rungs:
    - name: r
      guard:
        type: contact
        name: s
        contact_type: "NO"
      actions:
        - type: energise
          coil: c
`

// MissingCoilDocument is ValidDocument with the action pointing at an
// undeclared coil named "missing".
var MissingCoilDocument = strings.Replace(ValidDocument, `"coil":"c"`, `"coil":"missing"`, 1)

// EmptyNameDocument is ValidDocument with an empty module name.
var EmptyNameDocument = strings.Replace(ValidDocument, `"name":"m"`, `"name":""`, 1)

// RichDocument exercises every optional part of the IR.
const RichDocument = `{
  "version": "0.1.0",
  "module": {
    "name": "intake",
    "context": "document triage",
    "intent": {"goal": "route submissions"},
    "constraints": {
      "data_privacy": {"jurisdiction": "EU", "pii_handling": "redact"},
      "quality": {"min_precision": 0.9, "min_recall": 0.75},
      "cost": {"max_cost_per_submission": "0.05 USD"}
    },
    "signals": [
      {"name": "has_invoice", "parameters": ["doc"], "type": "bool"},
      {"name": "amount_over", "parameters": ["doc", "limit"]},
      {"name": "manual_hold"}
    ],
    "coils": [
      {"name": "route_finance", "parameters": ["doc"], "latching": false, "critical": true},
      {"name": "flag_review", "latching": true}
    ],
    "rungs": [
      {
        "name": "finance",
        "guard": {
          "type": "and",
          "left": {"type": "contact", "name": "has_invoice", "contact_type": "NO", "arguments": ["doc"]},
          "right": {
            "type": "not",
            "expr": {"type": "contact", "name": "manual_hold", "contact_type": "NO"}
          }
        },
        "actions": [{"type": "energise", "coil": "route_finance", "arguments": ["doc"]}]
      },
      {
        "name": "review",
        "guard": {
          "type": "or",
          "left": {"type": "contact", "name": "amount_over", "contact_type": "NO", "arguments": ["doc", 10000]},
          "right": {"type": "contact", "name": "manual_hold", "contact_type": "NC"}
        },
        "actions": [
          {"type": "energise", "coil": "flag_review"},
          {"type": "de_energise", "coil": "route_finance", "arguments": [true]}
        ]
      }
    ],
    "blocks": [
      {
        "name": "extract",
        "inputs": [{"name": "doc", "type": "bytes"}],
        "outputs": [{"name": "fields", "type": "map"}],
        "effect": "llm"
      },
      {
        "name": "classify",
        "inputs": [{"name": "fields", "type": "map"}],
        "outputs": [{"name": "label", "type": "string"}]
      }
    ],
    "networks": [
      {
        "name": "main",
        "wires": [{"source": "extract.fields", "target": "classify.fields"}],
        "outputs": [{"name": "result", "source": "classify.label"}]
      }
    ]
  }
}`
