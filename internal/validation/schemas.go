package validation

const addressSchema = `{
  "type": "object",
  "properties": {
    "street": { "type": "string" },
    "city": { "type": "string" },
    "state": { "type": "string" },
    "zipCode": { "type": "string" },
    "country": { "type": "string" }
  }
}`

const schemaRegister = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "email", "password"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "email": { "type": "string", "format": "email" },
    "password": { "type": "string", "minLength": 6 },
    "address": ` + addressSchema + `
  }
}`

const schemaLogin = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["email", "password"],
  "properties": {
    "email": { "type": "string", "minLength": 1 },
    "password": { "type": "string", "minLength": 1 }
  }
}`

const schemaProfileUpdate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": { "type": "string" },
    "address": ` + addressSchema + `
  }
}`

const schemaProductCreate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "description", "price", "category"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "description": { "type": "string", "minLength": 1 },
    "price": { "type": "number", "minimum": 0 },
    "category": { "type": "string", "minLength": 1 },
    "imageUrl": { "type": "string" },
    "stock": { "type": "integer", "minimum": 0 }
  }
}`

const schemaProductUpdate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "description": { "type": "string", "minLength": 1 },
    "price": { "type": "number", "minimum": 0 },
    "category": { "type": "string", "minLength": 1 },
    "imageUrl": { "type": "string" },
    "stock": { "type": "integer", "minimum": 0 }
  }
}`

const schemaStockAdjust = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["delta"],
  "properties": {
    "delta": { "type": "integer", "minimum": -1000000, "maximum": 1000000 }
  }
}`

const schemaCartAdd = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["productId"],
  "properties": {
    "productId": { "type": "string", "minLength": 1 },
    "quantity": { "type": "integer", "maximum": 1000 }
  }
}`

const schemaCartUpdate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["quantity"],
  "properties": {
    "quantity": { "type": "integer", "maximum": 1000 }
  }
}`

const schemaOrderCreate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "shippingAddress": ` + addressSchema + `
  }
}`

const schemaOrderStatus = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": { "type": "string" }
  }
}`
